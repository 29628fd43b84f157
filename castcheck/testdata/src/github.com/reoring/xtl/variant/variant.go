package variant

type Empty struct{}

type V2[A, B any] struct {
	a A
	b B
}

type V4[A, B, C, D any] struct {
	a A
	b B
	c C
	d D
}
