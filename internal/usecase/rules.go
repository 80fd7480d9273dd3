package usecase

import (
	"regexp"

	"github.com/catalogbridge/reconciler/internal/domain"
)

// The profiles below are hand-tuned for the hydroponics retail domain.
// They are plain data: the classifier takes whichever profile it is
// constructed with, so retargeting the engine to another vocabulary is a
// matter of declaring a new profile, not touching control flow.

// sizeRollPattern matches roll/box dimensions like "25' x 4'" or "5x15 ft".
var sizeRollPattern = regexp.MustCompile(`(\d+)\s*'?\s*[x×]\s*(\d+)\s*(?:'|ft|feet)?`)

// sizeLinearPattern matches a single linear dimension like "50 ft" or "100'".
var sizeLinearPattern = regexp.MustCompile(`(\d+)\s*(?:'|ft|feet)\b`)

// volumePattern matches a volume with unit, e.g. "500 ml", "8 oz", "1 L".
var volumePattern = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(ml|milliliters?|l|liters?|litres?|oz|ounces?|gal|gallons?)\b`)

// defaultSizePatterns renders roll dimensions as "25x4ft" and single
// dimensions as "50ft". The roll pattern is checked first: "25' x 4'"
// must not be swallowed by the linear pattern's leading number.
var defaultSizePatterns = []domain.AttributePattern{
	{
		Pattern: sizeRollPattern,
		Render: func(g []string) string {
			return g[1] + "x" + g[2] + "ft"
		},
	},
	{
		Pattern: sizeLinearPattern,
		Render: func(g []string) string {
			return g[1] + "ft"
		},
	},
}

// GardenMaterialsProfile classifies grow-room materials: reflective films,
// trellis netting, stakes, plant ties, hangers, tray liners.
var GardenMaterialsProfile = &domain.DomainProfile{
	Name: "garden-materials",

	Inclusion: []*regexp.Regexp{
		regexp.MustCompile(`trellis|netting|\bnet\b`),
		regexp.MustCompile(`reflective|mylar|panda\s*film|ground\s*cover`),
		regexp.MustCompile(`\bstake\b|\bstakes\b|plant\s*support`),
		regexp.MustCompile(`plant\s*tie|twist\s*tie|\btie\b|\bties\b|clips?\b`),
		regexp.MustCompile(`hanger|hanging\s*hook|rope\s*ratchet`),
		regexp.MustCompile(`liner|saucer|tray`),
	},
	Exclusion: []*regexp.Regexp{
		regexp.MustCompile(`\bfans?\b|\bpumps?\b|ballast|\bduct\b`),
		regexp.MustCompile(`nutrient|fertilizer|\bsoil\b|\bseeds?\b`),
		regexp.MustCompile(`\blights?\b|\bbulbs?\b|\blamps?\b`),
	},
	StrongSignal: []*regexp.Regexp{
		regexp.MustCompile(`trellis|mylar|panda\s*film|ground\s*cover`),
		regexp.MustCompile(`rope\s*ratchet|gro[\s-]?pro|grower'?s\s*edge`),
	},

	Categories: []domain.CategoryRule{
		{Pattern: regexp.MustCompile(`reflective|mylar|panda\s*film|silver\s*film|diamond\s*film`), Category: "reflective"},
		{Pattern: regexp.MustCompile(`trellis|netting|\bnet\b`), Category: "trellis"},
		{Pattern: regexp.MustCompile(`\bstakes?\b|plant\s*support|support\s*(rod|pole)`), Category: "stake"},
		{Pattern: regexp.MustCompile(`\bties?\b|twist\s*tie|plant\s*clip`), Category: "tie"},
		{Pattern: regexp.MustCompile(`hanger|hanging\s*hook|rope\s*ratchet`), Category: "hanger"},
		{Pattern: regexp.MustCompile(`liner|saucer|tray`), Category: "liner"},
	},
	DefaultCategory: "accessory",

	Brands: []domain.BrandRule{
		{Pattern: regexp.MustCompile(`gro[\s-]?pro`), Brand: "GroPro"},
		{Pattern: regexp.MustCompile(`grower'?s\s*edge`), Brand: "Grower's Edge"},
		{Pattern: regexp.MustCompile(`hydrofarm`), Brand: "Hydrofarm"},
		{Pattern: regexp.MustCompile(`sunleaves`), Brand: "Sunleaves"},
		{Pattern: regexp.MustCompile(`smart\s*pot`), Brand: "Smart Pot"},
		{Pattern: regexp.MustCompile(`vivosun`), Brand: "VIVOSUN"},
	},

	SizePatterns:  defaultSizePatterns,
	VolumePattern: volumePattern,
}

// PHECMetersProfile classifies water-testing gear: pH/EC/TDS meters,
// electrodes, calibration and storage solutions.
var PHECMetersProfile = &domain.DomainProfile{
	Name: "ph-ec-meters",

	Inclusion: []*regexp.Regexp{
		regexp.MustCompile(`\bph\b|\bec\b|\btds\b|\bppm\b`),
		regexp.MustCompile(`meter|tester|\bpen\b`),
		regexp.MustCompile(`electrode|probe`),
		regexp.MustCompile(`calibration|buffer|storage\s*solution`),
	},
	// Generic equipment words that co-occur with unrelated accessories.
	// Naive keyword inclusion pulls in clip fans and air pumps, so these
	// reject unless a strong signal overrides.
	Exclusion: []*regexp.Regexp{
		regexp.MustCompile(`\bfans?\b|\bpumps?\b|\bfilters?\b|\bducts?\b`),
		regexp.MustCompile(`ballast|\btents?\b|\btimers?\b`),
		regexp.MustCompile(`\blights?\b|\bbulbs?\b`),
	},
	StrongSignal: []*regexp.Regexp{
		regexp.MustCompile(`\bmeters?\b|electrodes?|probes?|calibration`),
		regexp.MustCompile(`bluelab|hanna|apera|milwaukee\s*instruments|hm\s*digital|oakton`),
	},

	Categories: []domain.CategoryRule{
		// Combo checked first: "pH/EC" titles would otherwise land in
		// ph_meter, so order replaces the lookahead the naive rule needs.
		{Pattern: regexp.MustCompile(`combo|\bph\b\s*[/&+-]\s*\bec\b|\bec\b\s*[/&+-]\s*\bph\b|multi[\s-]*(parameter|meter)`), Category: "combo_meter"},
		{Pattern: regexp.MustCompile(`\bph\b\s*(meters?|pens?|testers?)`), Category: "ph_meter"},
		{Pattern: regexp.MustCompile(`\b(ec|tds|ppm)\b\s*(meters?|pens?|testers?)`), Category: "ec_meter"},
		{Pattern: regexp.MustCompile(`electrodes?|probes?|replacement\s*(tip|sensor)`), Category: "electrode"},
		{Pattern: regexp.MustCompile(`calibration|buffer|\bkcl\b|storage\s*solution`), Category: "calibration_solution"},
		{Pattern: regexp.MustCompile(`\bph\b\s*(up|down|adjust)`), Category: "ph_adjuster"},
		{Pattern: regexp.MustCompile(`cleaning|conditioning`), Category: "maintenance"},
	},
	DefaultCategory: "other",

	Brands: []domain.BrandRule{
		{Pattern: regexp.MustCompile(`bluelab`), Brand: "Bluelab"},
		{Pattern: regexp.MustCompile(`hanna`), Brand: "Hanna Instruments"},
		{Pattern: regexp.MustCompile(`apera`), Brand: "Apera"},
		{Pattern: regexp.MustCompile(`milwaukee`), Brand: "Milwaukee Instruments"},
		{Pattern: regexp.MustCompile(`hm\s*digital`), Brand: "HM Digital"},
		{Pattern: regexp.MustCompile(`oakton`), Brand: "Oakton"},
		{Pattern: regexp.MustCompile(`general\s*hydroponics`), Brand: "General Hydroponics"},
	},

	SizePatterns:  defaultSizePatterns,
	VolumePattern: volumePattern,
}

// profilesByName indexes the shipped profiles for config lookup.
var profilesByName = map[string]*domain.DomainProfile{
	GardenMaterialsProfile.Name: GardenMaterialsProfile,
	PHECMetersProfile.Name:      PHECMetersProfile,
}

// ProfileByName returns a shipped domain profile, or nil when unknown.
func ProfileByName(name string) *domain.DomainProfile {
	return profilesByName[name]
}
