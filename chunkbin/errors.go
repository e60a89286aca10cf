package chunkbin

import "errors"

// Sentinel errors for the §7 InvalidBinary error kind. Callers that need to
// distinguish causes should use errors.Is against these; the wrapped
// message carries the specific offset/field.
var (
	ErrBadMagic           = errors.New("chunkbin: bad magic")
	ErrUnsupportedVersion = errors.New("chunkbin: unsupported version")
	ErrTruncated          = errors.New("chunkbin: truncated section")
	ErrOutOfRange         = errors.New("chunkbin: index out of range")
	ErrForbiddenEdge      = errors.New("chunkbin: forbidden edge kind")
	ErrNotMonotonic       = errors.New("chunkbin: order_tag not strictly increasing for source key")
	ErrDuplicateOrderTag  = errors.New("chunkbin: duplicate order_tag for (source key, target)")
	ErrUnsortedTable      = errors.New("chunkbin: connection/link table not sorted")
)
