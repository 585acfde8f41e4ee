package essence

import "github.com/cinecert/asdcplib-sub002/id"

// LabelSet selects which Operational Pattern and essence-container UL
// variant a session writes, per spec.md §6's `label_set` option.
type LabelSet uint8

const (
	// LabelSetSMPTE selects the final SMPTE-registered UL variants.
	LabelSetSMPTE LabelSet = iota
	// LabelSetInterop selects the earlier Interop UL variants some
	// legacy AS-DCP deliverables still require.
	LabelSetInterop
)

// WriterInfo is the record spec.md §3 attaches to every file: product
// identity, the label-set selection, and the encryption/HMAC context
// identifiers. The cipher key itself is never stored here or on disk —
// CipherKeyID only identifies which key was used.
type WriterInfo struct {
	ProductID      id.UUID
	ProductVersion string
	LabelSet       LabelSet

	Encrypted bool
	HMAC      bool

	AssetID     id.UUID
	ContextID   id.UUID
	CipherKeyID id.UUID
}
