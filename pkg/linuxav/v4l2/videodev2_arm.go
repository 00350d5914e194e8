//go:build linux && arm

package v4l2

import "unsafe"

// On 32-bit ARM the union is 4-byte aligned and the struct is 204 bytes.
var _ [204]byte = [unsafe.Sizeof(v4l2Format{})]byte{}

const (
	vidiocGFmt   = 0xc0cc5604
	vidiocSFmt   = 0xc0cc5605
	vidiocTryFmt = 0xc0cc5640
)

type v4l2Format struct {
	typ uint32        // offset 0
	pix v4l2PixFormat // offset 4
	_   [152]byte     // rest of the 200 byte union
}
