package commerce

// StaticStore is a fixed store identity for deployments that serve a
// single shop. It doubles as its own CurrentStore.
type StaticStore string

func (s StaticStore) Name() string { return string(s) }

func (s StaticStore) Store() Store { return s }

// AnonymousAccount stands in for the acting customer when the storefront
// reports no authenticated user.
type AnonymousAccount struct{}

func (AnonymousAccount) ID() string { return "anonymous" }
