package model

// Finding represents one installed package version that equals a known-bad version.
type Finding struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// Key returns the identity key of the finding ("name@version").
func (f Finding) Key() string {
	return f.Name + "@" + f.Version
}

func (f Finding) String() string {
	return f.Key()
}
