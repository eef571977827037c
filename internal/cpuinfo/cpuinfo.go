// Package cpuinfo reports real host CPU capabilities for the kernel's
// boot-time hardware announcement, via golang.org/x/sys/cpu, which is
// always safe to call regardless of GOARCH — fields for extensions that
// don't apply to the running architecture simply read false.
package cpuinfo

import (
	"unsafe"

	"golang.org/x/sys/cpu"
)

// Features is the host's detected CPU feature set.
type Features struct {
	SSE3   bool
	SSSE3  bool
	SSE41  bool
	SSE42  bool
	AVX    bool
	AVX2   bool
	AES    bool
	RDRAND bool
	RDSEED bool
}

// Detect returns the running host's CPU feature set.
func Detect() Features {
	return Features{
		SSE3:   cpu.X86.HasSSE3,
		SSSE3:  cpu.X86.HasSSSE3,
		SSE41:  cpu.X86.HasSSE41,
		SSE42:  cpu.X86.HasSSE42,
		AVX:    cpu.X86.HasAVX,
		AVX2:   cpu.X86.HasAVX2,
		AES:    cpu.X86.HasAES,
		RDRAND: cpu.X86.HasRDRAND,
		RDSEED: cpu.X86.HasRDSEED,
	}
}

// CacheLineSize returns the platform's L1 data cache line size in bytes,
// reported alongside the feature flags in the boot-time hardware
// announcement. cpu.CacheLinePad is sized to exactly that many
// bytes on every GOARCH x/sys supports, so its size is the line size.
func CacheLineSize() int {
	return int(unsafe.Sizeof(cpu.CacheLinePad{}))
}
