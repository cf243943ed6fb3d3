package colorscale

import "github.com/lucasb-eyer/go-colorful"

func hex(s string) colorful.Color {
	c, err := colorful.Hex(s)
	if err != nil {
		panic(err)
	}
	return c
}

func table(pts ...any) Table {
	t := make(Table, 0, len(pts)/2)
	for k := 0; k+1 < len(pts); k += 2 {
		t = append(t, Point{Break: float64(pts[k].(int)), Color: hex(pts[k+1].(string))})
	}
	return t
}

// Break values are in the display units the scale was designed for; only
// their ratio to the last break matters.
var tables = [idCount]Table{
	Current: table(
		0, "#d90000", 1, "#d92a00", 2, "#d96e00", 3, "#d9b200", 4, "#d4d404",
		5, "#a6d906", 7, "#06d9a0", 9, "#00d9b0", 12, "#00d9c0", 15, "#00aed0",
		18, "#0083e0", 21, "#0057e0", 24, "#0000f0", 27, "#0400f0", 30, "#1c00f0",
		36, "#4800f0", 42, "#6900f0", 48, "#a000f0", 56, "#f000f0",
	),
	Generic: table(
		0, "#00d900", 1, "#2ad900", 2, "#6ed900", 3, "#b2d900", 4, "#d4d400",
		5, "#d9a600", 7, "#d90000", 9, "#d90040", 12, "#d90060", 15, "#ae0080",
		18, "#8300a0", 21, "#5700c0", 24, "#0000d0", 27, "#0400e0", 30, "#0800e0",
		36, "#a000e0", 42, "#c004c0", 48, "#c008a0", 56, "#c0a008",
	),
	QuickScat: table(
		0, "#000000", 5, "#000000", 10, "#00b2d9", 15, "#00d4d4", 20, "#00d900",
		25, "#d9d900", 30, "#d95700", 35, "#ae0000", 40, "#870000", 45, "#414100",
	),
	SeaTemp: table(
		0, "#0000d9", 1, "#002ad9", 2, "#006ed9", 3, "#00b2d9", 4, "#00d4d4",
		5, "#00d9a6", 7, "#00d900", 9, "#95d900", 12, "#d9d900", 15, "#d9ae00",
		18, "#d98300", 21, "#d95700", 24, "#d90000", 27, "#ae0000", 30, "#8c0000",
		36, "#870000", 42, "#690000", 48, "#550000", 56, "#410000",
	),
}
