//go:build linux && (amd64 || arm64)

package v4l2

import "unsafe"

// struct v4l2_format holds a union containing pointers, so on 64-bit the
// union starts at offset 8 and the struct is 208 bytes.
var _ [208]byte = [unsafe.Sizeof(v4l2Format{})]byte{}

const (
	vidiocGFmt   = 0xc0d05604
	vidiocSFmt   = 0xc0d05605
	vidiocTryFmt = 0xc0d05640
)

type v4l2Format struct {
	typ uint32        // offset 0
	_   [4]byte       // union alignment
	pix v4l2PixFormat // offset 8
	_   [152]byte     // rest of the 200 byte union
}
