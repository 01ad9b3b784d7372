package catalog

// curatedAliases are hand-authored spellings the generator uses for catalog
// products. Keys are canonical names; a product missing from the loaded
// catalog simply contributes no aliases.
var curatedAliases = map[string][]string{
	"Pre-Wash":                           {"pre wash", "prewash"},
	"Bond Boost for New Wash":            {"bond boost"},
	"Massaging Scalp Brush":              {"scalp brush"},
	"New Wash Dispenser with Pump":       {"new wash dispenser", "dispenser with pump"},
	"New Wash Original Trial Kit":        {"new wash trial kit"},
	"Care and Texture Set":               {"care & texture set"},
	"Purple Color Boost":                 {"purple boost"},
	"Blue Color Boost":                   {"blue boost"},
	"Red Color Boost":                    {"red boost"},
	"New Wash Method for All Hair Types": {"new wash method"},
	"Travel Bottle":                      {"travel bottles"},
}
