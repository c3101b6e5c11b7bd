package types

// SeedDNA returns the default profile used before a candidate has saved
// their own. Reads never observe an absent profile, only default-or-set.
func SeedDNA() *BrandDNA {
	return &BrandDNA{
		Version:         SchemaVersion,
		CandidateName:   "吳瓊華",
		Party:           "中國國民黨 (KMT)",
		Personality:     "溫柔、強韌、專業",
		CompetitiveEdge: "深耕烏日大肚龍井，長期關注教育、空汙與地方交通",
		TargetVoters:    "年輕父母、在地長輩、通勤族",
		CoreMessage:     "守護家園，點亮烏大龍",
		Slogan:          "深耕巷弄，點亮家園",
		District:        "台中市 第三選區 (烏日、大肚、龍井)",
		ElectionLevel:   "直轄市議員",
		Triangle: &StrategicTriangle{
			VoterPainPoints:    "烏日高體特區新校舍需求、中火空污改善、大肚龍井交通瓶頸",
			CompetitorWeakness: "對手忽略微觀民生，過度糾結於中央政治意識形態",
			CandidateStrengths: "叫得動市府資源，具備跨選區協調大型建設的經歷",
		},
		LastUpdated: "2024/05/20 14:00:00",
	}
}
