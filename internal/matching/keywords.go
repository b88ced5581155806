package matching

// KeywordIntent maps a lowercase keyword phrase to an intent key.
type KeywordIntent struct {
	Keyword string
	Intent  string
}

// DefaultKeywordTable is the compiled-in keyword table. Scan order is the
// tie-break when more than one phrase matches a query, so entries must stay
// in this order.
var DefaultKeywordTable = []KeywordIntent{
	// UX/UI
	{"ux", "ux_process_methodology"},
	{"ux research", "ux_research_experience"},
	{"ux/ui", "UX_UI"},
	{"product design", "UX_UI"},
	{"visual design", "UI_Visual_Design"},
	{"ui design", "UI_Visual_Design"},
	{"ui", "UI_Visual_Design"},
	{"user research", "ux_research_experience"},
	{"research", "ux_research_experience"},

	// Design systems
	{"design systems", "design_systems_experience"},
	{"design system", "design_systems_experience"},
	{"ds", "design_systems_experience"},

	// Behavioral design
	{"behavioral design", "behavioral_design_experience"},
	{"behavioural design", "behavioral_design_experience"},
	{"behavioral", "behavioral_design_experience"},
	{"behavioural", "behavioral_design_experience"},
	{"behavioral science", "behavioral_design_experience"},
	{"behavioural science", "behavioral_design_experience"},
	{"nudge", "behavioral_design_experience"},
	{"nudges", "behavioral_design_experience"},
	{"habit design", "behavioral_design_experience"},
	{"com-b", "behavioral_design_experience"},
	{"bj fogg", "behavioral_design_experience"},

	// Tools
	{"figma", "skills_design_tools"},
	{"tools", "skills_design_tools"},
	{"software", "skills_design_tools"},

	// Leadership
	{"leadership", "project_leadership_experience"},
	{"team", "project_leadership_experience"},
	{"management", "project_leadership_experience"},

	// Soft skills
	{"soft skills", "soft_skills_profile"},
	{"communication", "soft_skills_profile"},
	{"collaboration", "soft_skills_profile"},
	{"mentoring", "soft_skills_profile"},

	// Industries
	{"saas", "sector_saas"},
	{"enterprise", "seniority_enterprise_scale"},
	{"startup", "sector_saas"},

	// Skills
	{"prototyping", "skills_design_tools"},
	{"wireframes", "skills_design_tools"},
	{"accessibility", "accessibility_inclusive_design"},
	{"testing", "ux_research_experience"},
}
