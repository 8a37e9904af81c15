package grant

import (
	"strings"

	"github.com/google/uuid"
)

var idNamespace = uuid.MustParse("8f6d2c1e-4b7a-5d3c-9e2f-1a0b3c4d5e6f")

const (
	KindTreasury = "treasury"
	KindStream   = "stream"
	KindVesting  = "vesting"
)

// DeriveID returns the deterministic identifier of a record located by its parts,
// e.g. DeriveID(KindStream, treasuryID, recipient). It is used for lookup only.
func DeriveID(kind string, parts ...string) string {
	key := kind + "\x00" + strings.Join(parts, "\x00")
	return uuid.NewSHA1(idNamespace, []byte(key)).String()
}

// CustodyOwner is the owner id of the account holding a grant's funds.
func CustodyOwner(grantID string) string {
	return "custody:" + grantID
}
