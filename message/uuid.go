package message

import "github.com/google/uuid"

// IDGenerator generates unique message IDs.
type IDGenerator func() string

// DefaultIDGenerator is used by NewContext. It produces RFC 4122 UUID v4 strings.
var DefaultIDGenerator IDGenerator = uuid.NewString
