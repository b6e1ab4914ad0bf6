package mandel

// EscapeTime tries to decide whether c is a member of the Mandelbrot set
// using at most limit iterations.
//
// If c escapes the circle of radius 2, EscapeTime returns the zero-based
// iteration at which it did and true. If c still looks like a member after
// limit iterations, it returns 0 and false.
func EscapeTime(c complex128, limit int) (int, bool) {
	var z complex128
	for i := range limit {
		z = z*z + c
		if real(z)*real(z)+imag(z)*imag(z) > 4 {
			return i, true
		}
	}
	return 0, false
}
