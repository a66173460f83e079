package task

import "github.com/pkg/errors"

// Handle identifies an allocation made through a Module. Zero is the failure
// sentinel, never a valid handle.
type Handle uint32

// Module is the binary calling surface of one kernel: init, alloc, run.
// It mirrors the foreign-memory contract the runtimes under test export,
// with validated handle-backed buffers in place of raw pointers. A Module is
// not safe for concurrent use; the kernels behind it are.
type Module struct {
	kernel Kernel
	seed   uint32
	bufs   map[Handle][]byte
	next   Handle
}

// NewModule wraps a kernel in its ABI surface.
func NewModule(k Kernel) *Module {
	return &Module{kernel: k, bufs: make(map[Handle][]byte), next: 1}
}

// Init records the seed. The canonical kernels keep no seeded internal
// state, so this is a contract-mandated no-op.
func (m *Module) Init(seed uint32) {
	m.seed = seed
}

// Alloc reserves a parameter buffer and returns its handle, or 0 when the
// request is zero-sized or exceeds the allocation cap.
func (m *Module) Alloc(nBytes uint32) Handle {
	if nBytes == 0 || nBytes > maxAllocationSize {
		return 0
	}
	h := m.next
	m.next++
	m.bufs[h] = make([]byte, nBytes)
	return h
}

// Buffer returns the byte view behind a handle for the caller to write a
// parameter record into, or an error for an unknown handle.
func (m *Module) Buffer(h Handle) ([]byte, error) {
	buf, ok := m.bufs[h]
	if !ok {
		return nil, errors.Wrapf(ErrBadHandle, "handle %d", h)
	}
	return buf, nil
}

// Free releases a handle. Unknown handles are ignored.
func (m *Module) Free(h Handle) {
	delete(m.bufs, h)
}

// RunTask decodes the parameter record behind the handle and runs the
// kernel. Every failure mode, including decode and validation errors, maps
// to the sentinel hash 0 as the binary contract requires.
func (m *Module) RunTask(h Handle) uint32 {
	hash, err := m.runTask(h)
	if err != nil {
		return 0
	}
	return hash
}

func (m *Module) runTask(h Handle) (uint32, error) {
	buf, err := m.Buffer(h)
	if err != nil {
		return 0, err
	}
	params, err := DecodeParams(m.kernel.Kind(), buf)
	if err != nil {
		return 0, err
	}
	return m.kernel.Run(params)
}
