// Package kernels - Typ-spezialisierte Kernel-Implementierungen
//
// Die Kernels sind generische Funktionen, die pro Element-Typ
// instanziiert und vom dispatch-Paket ueber die Dispatch-Tabelle
// aufgerufen werden. Sie arbeiten in-place oder schreiben in vom
// Aufrufer bereitgestellte Puffer und allozieren keine Tensoren.
package kernels

import "errors"

var (
	ErrLengthMismatch   = errors.New("buffer length mismatch")
	ErrShortBuffer      = errors.New("output buffer too short")
	ErrIndexOutOfBounds = errors.New("index out of bounds")
	ErrCorruptBitmap    = errors.New("corrupt bitmap encoding")
)
