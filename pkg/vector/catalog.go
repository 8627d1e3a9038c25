package vector

// metricDef is one catalog entry: a metric key, its allowed values, and
// whether the key is mandatory for the version.
type metricDef struct {
	key       string
	values    []string
	mandatory bool
}

func (d metricDef) allows(value string) bool {
	for _, v := range d.values {
		if v == value {
			return true
		}
	}
	return false
}

// catalog is the closed metric set for one version. Catalogs are built
// once at package init and never mutated.
type catalog struct {
	defs []metricDef
	pos  map[string]int
}

func newCatalog(defs []metricDef) *catalog {
	pos := make(map[string]int, len(defs))
	for i, d := range defs {
		pos[d.key] = i
	}
	return &catalog{defs: defs, pos: pos}
}

func (c *catalog) lookup(key string) (metricDef, int, bool) {
	i, ok := c.pos[key]
	if !ok {
		return metricDef{}, 0, false
	}
	return c.defs[i], i, true
}

func catalogFor(v Version) *catalog {
	if v == V40 {
		return catalogV4
	}
	return catalogV3
}

// catalogV3 covers CVSS 3.0 and 3.1, which share one metric set. The
// first eight keys form the mandatory base group; the order of the
// remaining keys is the conventional rendering order only, since v3.x
// does not require it on input.
var catalogV3 = newCatalog([]metricDef{
	{key: "AV", values: []string{"N", "A", "L", "P"}, mandatory: true},
	{key: "AC", values: []string{"L", "H"}, mandatory: true},
	{key: "PR", values: []string{"N", "L", "H"}, mandatory: true},
	{key: "UI", values: []string{"N", "R"}, mandatory: true},
	{key: "S", values: []string{"U", "C"}, mandatory: true},
	{key: "C", values: []string{"H", "L", "N"}, mandatory: true},
	{key: "I", values: []string{"H", "L", "N"}, mandatory: true},
	{key: "A", values: []string{"H", "L", "N"}, mandatory: true},
	{key: "E", values: []string{"X", "H", "F", "P", "U"}},
	{key: "RL", values: []string{"X", "U", "W", "T", "O"}},
	{key: "RC", values: []string{"X", "C", "R", "U"}},
	{key: "CR", values: []string{"X", "H", "M", "L"}},
	{key: "IR", values: []string{"X", "H", "M", "L"}},
	{key: "AR", values: []string{"X", "H", "M", "L"}},
	{key: "MAV", values: []string{"X", "N", "A", "L", "P"}},
	{key: "MAC", values: []string{"X", "L", "H"}},
	{key: "MPR", values: []string{"X", "N", "L", "H"}},
	{key: "MUI", values: []string{"X", "N", "R"}},
	{key: "MS", values: []string{"X", "U", "C"}},
	{key: "MC", values: []string{"X", "H", "L", "N"}},
	{key: "MI", values: []string{"X", "H", "L", "N"}},
	{key: "MA", values: []string{"X", "H", "L", "N"}},
})

// catalogV4 lists the CVSS 4.0 keys in the canonical master order, which
// v4.0 input must follow. The first eleven keys are mandatory. Threat and
// Supplemental group keys outside base scoring are deliberately absent:
// they parse as unknown metrics.
var catalogV4 = newCatalog([]metricDef{
	{key: "AV", values: []string{"N", "A", "L", "P"}, mandatory: true},
	{key: "AC", values: []string{"L", "H"}, mandatory: true},
	{key: "AT", values: []string{"N", "P"}, mandatory: true},
	{key: "PR", values: []string{"N", "L", "H"}, mandatory: true},
	{key: "UI", values: []string{"N", "P", "A"}, mandatory: true},
	{key: "VC", values: []string{"H", "L", "N"}, mandatory: true},
	{key: "VI", values: []string{"H", "L", "N"}, mandatory: true},
	{key: "VA", values: []string{"H", "L", "N"}, mandatory: true},
	{key: "SC", values: []string{"H", "L", "N"}, mandatory: true},
	{key: "SI", values: []string{"H", "L", "N"}, mandatory: true},
	{key: "SA", values: []string{"H", "L", "N"}, mandatory: true},
	{key: "E", values: []string{"X", "A", "P", "U"}},
	{key: "CR", values: []string{"X", "H", "M", "L"}},
	{key: "IR", values: []string{"X", "H", "M", "L"}},
	{key: "AR", values: []string{"X", "H", "M", "L"}},
	{key: "MAV", values: []string{"X", "N", "A", "L", "P"}},
	{key: "MAC", values: []string{"X", "L", "H"}},
	{key: "MAT", values: []string{"X", "N", "P"}},
	{key: "MPR", values: []string{"X", "N", "L", "H"}},
	{key: "MUI", values: []string{"X", "N", "P", "A"}},
	{key: "MVC", values: []string{"X", "H", "L", "N"}},
	{key: "MVI", values: []string{"X", "H", "L", "N"}},
	{key: "MVA", values: []string{"X", "H", "L", "N"}},
	{key: "MSC", values: []string{"X", "H", "L", "N"}},
	{key: "MSI", values: []string{"X", "S", "H", "L", "N"}},
	{key: "MSA", values: []string{"X", "S", "H", "L", "N"}},
})
