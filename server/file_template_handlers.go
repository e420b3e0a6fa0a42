package server

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"slices"
	"strings"

	"github.com/jrsteele09/go-inventory-ui/companies"
	"github.com/jrsteele09/go-inventory-ui/notify"
	"github.com/jrsteele09/go-inventory-ui/users"
)

//go:embed templates/*
var templateFiles embed.FS

const layoutTemplate = "layout.html"

func TemplateFilesFS() fs.FS {
	subFS, err := fs.Sub(templateFiles, "templates")
	if err != nil {
		panic("Failed to create templates sub filesystem: " + err.Error())
	}
	return subFS
}

var templateFuncs = template.FuncMap{
	"roleLabel": users.RoleLabel,
	"hasRole": func(user *users.UserProfile, role string) bool {
		return user.HasRole(role)
	},
	"initials": func(c companies.Company) string {
		return c.Initials()
	},
	"noticeClass": func(n notify.Notice) string {
		switch n.Level {
		case notify.LevelSuccess:
			return "success"
		case notify.LevelWarning:
			return "warning"
		case notify.LevelError:
			return "danger"
		}
		return "info"
	},
	"lower":    strings.ToLower,
	"contains": slices.Contains[[]string],
}

// ParseTemplate parses a page together with the shared layout
func ParseTemplate(name string) (*template.Template, error) {
	return template.New(layoutTemplate).Funcs(templateFuncs).ParseFS(TemplateFilesFS(), layoutTemplate, name)
}

// parseTemplates parses every page once at startup
func parseTemplates() (map[string]*template.Template, error) {
	names, err := fs.Glob(TemplateFilesFS(), "*.html")
	if err != nil {
		return nil, err
	}
	templates := make(map[string]*template.Template, len(names))
	for _, name := range names {
		if name == layoutTemplate {
			continue
		}
		tmpl, err := ParseTemplate(name)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		templates[name] = tmpl
	}
	return templates, nil
}
