package parser

// NodeKind tags the variant of a scanned node.
type NodeKind string

const (
	NodeClass       NodeKind = "class"
	NodeModule      NodeKind = "module"
	NodeMethod      NodeKind = "method"
	NodeCall        NodeKind = "call"
	NodeMixin       NodeKind = "mixin"
	NodeAssociation NodeKind = "association"
	NodeRequire     NodeKind = "require"
	NodeConstant    NodeKind = "constant"
	NodeComment     NodeKind = "comment"
)

// AssociationKind is the declared relationship macro.
type AssociationKind string

const (
	HasMany             AssociationKind = "has_many"
	HasOne              AssociationKind = "has_one"
	BelongsTo           AssociationKind = "belongs_to"
	HasAndBelongsToMany AssociationKind = "has_and_belongs_to_many"
)

// Visibility of a method declaration.
type Visibility string

const (
	Public    Visibility = "public"
	Private   Visibility = "private"
	Protected Visibility = "protected"
)

// Param is a single parameter of a method header. Types are never resolved.
type Param struct {
	Name    string `json:"name"`
	Keyword bool   `json:"keyword,omitempty"`
	Splat   bool   `json:"splat,omitempty"`
	Block   bool   `json:"block,omitempty"`
	Default string `json:"default,omitempty"`
}

// Node is a shallow, best-effort fact extracted from one source line.
//
// The scanner carries no grammar: every field is a heuristic extraction and
// downstream consumers must not assume soundness. OwnerClass/OwnerMethod give
// the enclosing context at the moment the line was scanned.
type Node struct {
	Kind NodeKind `json:"kind"`
	Line int      `json:"line"` // 1-indexed source line

	Name        string `json:"name,omitempty"`       // class/module/method/constant/association name
	Superclass  string `json:"superclass,omitempty"` // class nodes only
	OwnerClass  string `json:"owner_class,omitempty"`
	OwnerMethod string `json:"owner_method,omitempty"`

	// Method nodes.
	SelfMethod bool       `json:"self_method,omitempty"`
	Params     []Param    `json:"params,omitempty"`
	Visibility Visibility `json:"visibility,omitempty"`

	// Call nodes.
	Receiver string `json:"receiver,omitempty"`
	Args     string `json:"args,omitempty"`

	// Mixin nodes: include/extend/prepend.
	MixinKind string `json:"mixin_kind,omitempty"`

	// Association nodes.
	Association AssociationKind `json:"association,omitempty"`

	// Require and comment nodes.
	Path string `json:"path,omitempty"`
	Text string `json:"text,omitempty"`
}
