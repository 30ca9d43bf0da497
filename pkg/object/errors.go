package object

import (
	"fmt"

	"github.com/mtl-dev/mtl/internal/mtlerr"
)

var errInvalidOID = fmt.Errorf("%w: malformed oid", mtlerr.ErrInvalidExpression)

var errCorruptTree = fmt.Errorf("%w: tree", mtlerr.ErrCorrupt)
