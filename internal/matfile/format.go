package matfile

// Data element types of the Level 5 format.
const (
	miINT8       = 1
	miUINT8      = 2
	miINT16      = 3
	miUINT16     = 4
	miINT32      = 5
	miUINT32     = 6
	miSINGLE     = 7
	miDOUBLE     = 9
	miINT64      = 12
	miUINT64     = 13
	miMATRIX     = 14
	miCOMPRESSED = 15
	miUTF8       = 16
	miUTF16      = 17
	miUTF32      = 18
)

const (
	headerSize     = 128
	headerTextSize = 116
	version5       = 0x0100
	version73      = 0x0200

	flagComplex = 0x0800
	flagGlobal  = 0x0400
	flagLogical = 0x0200
)

// Class is the MATLAB array class stored in an array's flags.
type Class uint8

const (
	ClassCell   Class = 1
	ClassStruct Class = 2
	ClassObject Class = 3
	ClassChar   Class = 4
	ClassSparse Class = 5
	ClassDouble Class = 6
	ClassSingle Class = 7
	ClassInt8   Class = 8
	ClassUint8  Class = 9
	ClassInt16  Class = 10
	ClassUint16 Class = 11
	ClassInt32  Class = 12
	ClassUint32 Class = 13
	ClassInt64  Class = 14
	ClassUint64 Class = 15
)

var classNames = map[Class]string{
	ClassCell:   "cell",
	ClassStruct: "struct",
	ClassObject: "object",
	ClassChar:   "char",
	ClassSparse: "sparse",
	ClassDouble: "double",
	ClassSingle: "single",
	ClassInt8:   "int8",
	ClassUint8:  "uint8",
	ClassInt16:  "int16",
	ClassUint16: "uint16",
	ClassInt32:  "int32",
	ClassUint32: "uint32",
	ClassInt64:  "int64",
	ClassUint64: "uint64",
}

func (c Class) String() string {
	if name, ok := classNames[c]; ok {
		return name
	}
	return "unknown"
}

// Numeric reports whether arrays of this class hold numbers.
func (c Class) Numeric() bool {
	return c == ClassSparse || (c >= ClassDouble && c <= ClassUint64)
}

func elementWidth(typ uint32) int {
	switch typ {
	case miINT8, miUINT8, miUTF8:
		return 1
	case miINT16, miUINT16, miUTF16:
		return 2
	case miINT32, miUINT32, miSINGLE, miUTF32:
		return 4
	case miDOUBLE, miINT64, miUINT64:
		return 8
	default:
		return 0
	}
}

func pad8(n int) int {
	if rem := n % 8; rem != 0 {
		return n + 8 - rem
	}
	return n
}
