package cook

// ParmType is the kind of an asset parameter.
type ParmType string

const (
	ParmFolderList ParmType = "folderlist"
	ParmFolder     ParmType = "folder"
	ParmMulti      ParmType = "multiparm"
	ParmInt        ParmType = "int"
	ParmFloat      ParmType = "float"
	ParmColor      ParmType = "color"
	ParmToggle     ParmType = "toggle"
	ParmString     ParmType = "string"
	ParmPath       ParmType = "path"
	ParmNode       ParmType = "node"
	ParmButton     ParmType = "button"
	ParmSeparator  ParmType = "separator"
	ParmRamp       ParmType = "ramp"
	ParmLabel      ParmType = "label"
)

// Parm is one entry of the asset's flat parameter list. Parent 0 means the
// parameter sits at the root.
type Parm struct {
	ID            int       `yaml:"id"`
	Parent        int       `yaml:"parent,omitempty"`
	Name          string    `yaml:"name"`
	Label         string    `yaml:"label,omitempty"`
	Type          ParmType  `yaml:"type"`
	Size          int       `yaml:"size,omitempty"`
	Invisible     bool      `yaml:"invisible,omitempty"`
	Choices       []string  `yaml:"choices,omitempty"`
	ButtonMenu    bool      `yaml:"button_menu,omitempty"`
	Instance      int       `yaml:"instance,omitempty"`
	Default       []float64 `yaml:"default,flow,omitempty"`
	DefaultString string    `yaml:"default_string,omitempty"`
}

// TupleSize returns the parameter size, at least 1.
func (p *Parm) TupleSize() int {
	if p.Size < 1 {
		return 1
	}
	return p.Size
}

// IsContainer reports whether the parameter groups other parameters.
func (p *Parm) IsContainer() bool {
	switch p.Type {
	case ParmFolderList, ParmFolder, ParmMulti:
		return true
	}
	return false
}
