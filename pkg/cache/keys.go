package cache

// Keyer derives cache keys.
type Keyer interface {
	// ArtifactKey identifies an encoded output image.
	ArtifactKey(imageHash, recipeHash string, opts ArtifactKeyOpts) string

	// TraceKey identifies a box-only trace of a recipe.
	TraceKey(recipeHash string, opts TraceKeyOpts) string
}

// ArtifactKeyOpts holds the render parameters that change the artifact.
type ArtifactKeyOpts struct {
	Box     []float64 `json:"box,omitempty"`
	Format  string    `json:"format"`
	Quality int       `json:"quality,omitempty"`
}

// TraceKeyOpts holds the inputs of a box-only trace.
type TraceKeyOpts struct {
	Width  int       `json:"width"`
	Height int       `json:"height"`
	Box    []float64 `json:"box,omitempty"`
}

// DefaultKeyer hashes key components with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

func (DefaultKeyer) ArtifactKey(imageHash, recipeHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", imageHash, recipeHash, opts)
}

func (DefaultKeyer) TraceKey(recipeHash string, opts TraceKeyOpts) string {
	return hashKey("trace", recipeHash, opts)
}

var _ Keyer = DefaultKeyer{}
