package core

import (
	"fmt"
	"strings"

	packageurl "github.com/git-pkgs/packageurl-go"
)

// PURL wraps packageurl.PackageURL with helpers for locating release notes.
type PURL struct {
	packageurl.PackageURL
}

// ParsePURL parses a Package URL string into its components.
func ParsePURL(purl string) (*PURL, error) {
	p, err := packageurl.FromString(purl)
	if err != nil {
		return nil, err
	}
	return &PURL{p}, nil
}

// FullName returns the package name in the format its ecosystem uses.
// For npm: "@babel/core", for maven: "org.apache.commons:commons-lang3"
func (p PURL) FullName() string {
	if p.Namespace == "" {
		return p.Name
	}
	if p.Type == "maven" {
		return p.Namespace + ":" + p.Name
	}
	return p.Namespace + "/" + p.Name
}

// Qualifier returns the value of a qualifier such as "repository_url".
func (p PURL) Qualifier(key string) string {
	return p.Qualifiers.Map()[key]
}

// DocumentPath returns the relative path under which release notes for this
// package version are published: type/namespace/name/version.
func (p PURL) DocumentPath() (string, error) {
	if p.Version == "" {
		return "", fmt.Errorf("PURL has no version: %s", p.ToString())
	}
	parts := []string{p.Type}
	if p.Namespace != "" {
		parts = append(parts, strings.Split(p.Namespace, "/")...)
	}
	parts = append(parts, p.Name, p.Version)
	return strings.Join(parts, "/"), nil
}
