package task

// Kernel is one canonical benchmark computation. Kernels are pure and
// synchronous: no state survives a Run call, and independent calls are safe
// to make concurrently.
type Kernel interface {
	Kind() Kind
	Name() string
	// Run executes the kernel and returns its verification hash. All
	// failure modes surface as an error; the ABI layer maps them to the
	// legacy sentinel hash 0.
	Run(p Params) (uint32, error)
}

// ForKind returns the canonical kernel for a task kind, or nil for an
// unknown kind.
func ForKind(k Kind) Kernel {
	switch k {
	case Mandelbrot:
		return mandelbrotKernel{}
	case JSONParse:
		return jsonParseKernel{}
	case Base64:
		return base64Kernel{}
	case MatrixMul:
		return matrixMulKernel{}
	default:
		return nil
	}
}

// Kernels returns every canonical kernel in declaration order.
func Kernels() []Kernel {
	kernels := make([]Kernel, 0, len(Kinds()))
	for _, k := range Kinds() {
		kernels = append(kernels, ForKind(k))
	}
	return kernels
}
