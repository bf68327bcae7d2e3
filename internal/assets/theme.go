package assets

// ContentsName is the asset name of the contents page template and style.
const ContentsName = "contents"

// Theme is the template and stylesheet of the contents page.
type Theme struct {
	Template string
	Style    string
}

// LoadTheme reads the contents theme from src.
func LoadTheme(src Source) (*Theme, error) {
	tmpl, err := src.Read(Template, ContentsName)
	if err != nil {
		return nil, err
	}
	style, err := src.Read(Style, ContentsName)
	if err != nil {
		return nil, err
	}
	return &Theme{Template: tmpl, Style: style}, nil
}

// LoadContentsTheme reads the contents theme from dir, taking any file dir
// lacks from the built-in set. An empty dir yields the built-in theme.
func LoadContentsTheme(dir string) (*Theme, error) {
	if dir == "" {
		return LoadTheme(Builtin{})
	}
	d, err := OpenDir(dir)
	if err != nil {
		return nil, err
	}
	return LoadTheme(Overlay{Top: d, Base: Builtin{}})
}

// DefaultTheme returns the built-in contents theme.
func DefaultTheme() *Theme {
	t, err := LoadTheme(Builtin{})
	if err != nil {
		panic("assets: built-in contents theme missing: " + err.Error())
	}
	return t
}
