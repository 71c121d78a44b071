package loam

// EntryMetadata is the frontmatter of one palette document. It uses
// "mapstructure" tags to match the YAML keys; the markdown body below the
// frontmatter is the palette description.
type EntryMetadata struct {
	Name     string      `json:"name" mapstructure:"name"`
	Category string      `json:"category" mapstructure:"category"`
	Type     string      `json:"type" mapstructure:"type"`
	Width    float64     `json:"width" mapstructure:"width"`
	Height   float64     `json:"height" mapstructure:"height"`
	Sockets  []SocketDoc `json:"sockets" mapstructure:"sockets"`
}

// SocketDoc declares one socket every node of this schema type carries.
type SocketDoc struct {
	Name      string `json:"name" mapstructure:"name"`
	Direction string `json:"direction" mapstructure:"direction"`
}
