package overlay

// HandConnections links the 21 hand landmarks into the usual skeleton.
var HandConnections = [][2]int{
	{0, 1}, {1, 2}, {2, 3}, {3, 4},
	{0, 5}, {5, 6}, {6, 7}, {7, 8},
	{5, 9}, {9, 10}, {10, 11}, {11, 12},
	{9, 13}, {13, 14}, {14, 15}, {15, 16},
	{13, 17}, {0, 17}, {17, 18}, {18, 19}, {19, 20},
}

// FaceConnections outlines the lips, eyes and eyebrows of the face mesh.
var FaceConnections = chain(
	// outer lips, lower then upper
	[]int{61, 146, 91, 181, 84, 17, 314, 405, 321, 375, 291},
	[]int{61, 185, 40, 39, 37, 0, 267, 269, 270, 409, 291},
	// right eye
	[]int{33, 7, 163, 144, 145, 153, 154, 155, 133},
	[]int{33, 246, 161, 160, 159, 158, 157, 173, 133},
	// left eye
	[]int{263, 249, 390, 373, 374, 380, 381, 382, 362},
	[]int{263, 466, 388, 387, 386, 385, 384, 398, 362},
	// right eyebrow
	[]int{46, 53, 52, 65, 55},
	[]int{70, 63, 105, 66, 107},
	// left eyebrow
	[]int{276, 283, 282, 295, 285},
	[]int{300, 293, 334, 296, 336},
)

// chain turns polylines into consecutive index pairs.
func chain(lines ...[]int) [][2]int {
	var out [][2]int
	for _, line := range lines {
		for i := 1; i < len(line); i++ {
			out = append(out, [2]int{line[i-1], line[i]})
		}
	}
	return out
}
