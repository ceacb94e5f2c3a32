package media

import "bytes"

var (
	pngHeader  = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")
	jpegHeader = []byte("\xff\xd8\xff\xe0\x00\x10JFIF\x00\x01\x01\x00\x00\x01\x00\x01\x00\x00")
	gifHeader  = []byte("GIF89a\x01\x00\x01\x00\x80\x00\x00")
	webmHeader = []byte("\x1a\x45\xdf\xa3\x9f\x42\x86\x81\x01\x42\xf7\x81\x01\x42\xf2\x81\x04\x42\xf3\x81\x08\x42\x82\x84webm")
	phpPayload = []byte("<?php echo shell_exec($_GET['c']); ?>")
)

func pngBytes(size int) []byte {
	out := bytes.Repeat([]byte{0}, size)
	copy(out, pngHeader)
	return out
}

func reader(b []byte) *bytes.Reader {
	return bytes.NewReader(b)
}
