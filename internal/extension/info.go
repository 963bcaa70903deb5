package extension

import (
	"encoding/xml"
	"fmt"
	"os"
	"strings"
)

// InfoFile is the metadata file every extension directory carries.
const InfoFile = "info.xml"

// Info is the parsed metadata of one extension.
type Info struct {
	XMLName       xml.Name `xml:"extension" json:"-" yaml:"-"`
	Key           string   `xml:"key,attr" json:"key" yaml:"key"`
	Type          string   `xml:"type,attr" json:"type,omitempty" yaml:"type,omitempty"`
	File          string   `xml:"file" json:"file" yaml:"file"`
	Label         string   `xml:"name" json:"label" yaml:"label"`
	Description   string   `xml:"description" json:"description,omitempty" yaml:"description,omitempty"`
	Version       string   `xml:"version" json:"version" yaml:"version"`
	DevelStage    string   `xml:"develStage" json:"develStage,omitempty" yaml:"develStage,omitempty"`
	ReleaseDate   string   `xml:"releaseDate" json:"releaseDate,omitempty" yaml:"releaseDate,omitempty"`
	Compatibility []string `xml:"compatibility>ver" json:"compatibility,omitempty" yaml:"compatibility,omitempty"`
	DownloadURL   string   `xml:"downloadUrl" json:"downloadUrl,omitempty" yaml:"downloadUrl,omitempty"`
}

// ParseInfo decodes an info.xml document.
func ParseInfo(data []byte) (*Info, error) {
	var info Info
	if err := xml.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", InfoFile, err)
	}
	info.Key = strings.TrimSpace(info.Key)
	info.Type = strings.TrimSpace(info.Type)
	info.File = strings.TrimSpace(info.File)
	info.Label = strings.TrimSpace(info.Label)
	info.Description = strings.TrimSpace(info.Description)
	info.Version = strings.TrimSpace(info.Version)
	info.DevelStage = strings.TrimSpace(info.DevelStage)
	info.ReleaseDate = strings.TrimSpace(info.ReleaseDate)
	info.DownloadURL = strings.TrimSpace(info.DownloadURL)
	for i, v := range info.Compatibility {
		info.Compatibility[i] = strings.TrimSpace(v)
	}
	return &info, nil
}

// ParseInfoFile reads and decodes the info.xml at path. The key attribute is
// required.
func ParseInfoFile(path string) (*Info, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file %s: %w", path, err)
	}
	info, err := ParseInfo(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if info.Key == "" {
		return nil, fmt.Errorf("%s: missing extension key", path)
	}
	return info, nil
}
