package cache

// ScopedKeyer prefixes every key of an inner Keyer, giving each tenant of a
// shared backend its own namespace.
//
//	teamKeyer := NewScopedKeyer(NewDefaultKeyer(), "team:vision:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer wraps inner; a nil inner means [DefaultKeyer].
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

func (k *ScopedKeyer) ArtifactKey(imageHash, recipeHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(imageHash, recipeHash, opts)
}

func (k *ScopedKeyer) TraceKey(recipeHash string, opts TraceKeyOpts) string {
	return k.prefix + k.inner.TraceKey(recipeHash, opts)
}
