package tutorial

// Abstraction is one core concept the model identified in the codebase.
type Abstraction struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	// Files holds zero-based indices into the crawled file list.
	Files []int `yaml:"file_indices"`
}

// Relationship is a directed edge between two abstractions.
type Relationship struct {
	From  int    `yaml:"from_abstraction"`
	To    int    `yaml:"to_abstraction"`
	Label string `yaml:"label"`
}

// Analysis is the project summary plus the abstraction relationship graph.
type Analysis struct {
	Summary       string         `yaml:"summary"`
	Relationships []Relationship `yaml:"relationships"`
}

// Chapter is one generated tutorial chapter.
type Chapter struct {
	// Number is the 1-based position in reading order.
	Number int
	// AbstractionIndex points into Tutorial.Abstractions.
	AbstractionIndex int
	Title            string
	Content          string
}

// Tutorial is the full generation result.
type Tutorial struct {
	ProjectName   string
	Summary       string
	Abstractions  []Abstraction
	Relationships []Relationship
	// Order lists abstraction indices in reading order.
	Order    []int
	Chapters []Chapter
}
