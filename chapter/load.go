package chapter

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/playspan/playspan/filesystem"
	"github.com/playspan/playspan/timestamp"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"gopkg.in/yaml.v3"
)

// sidecarExtensions are tried in order when looking for a chapter file next to the media.
var sidecarExtensions = []string{".chapters.json", ".chapters.yaml", ".chapters.yml"}

// offset is a chapter position written either as seconds or as a [[hh:]mm:]ss string.
type offset float64

func (o *offset) parse(s string) error {
	v, err := timestamp.Parse(s)
	if err != nil {
		return err
	}
	*o = offset(v)
	return nil
}

func (o *offset) UnmarshalJSON(data []byte) error {
	s := string(data)
	if unquoted, err := strconv.Unquote(s); err == nil {
		s = unquoted
	}
	return o.parse(s)
}

func (o *offset) UnmarshalYAML(node *yaml.Node) error {
	return o.parse(node.Value)
}

type sidecarEntry struct {
	Title string  `json:"title" yaml:"title"`
	Start offset  `json:"start" yaml:"start"`
	End   *offset `json:"end" yaml:"end"`
}

type sidecarFile struct {
	Chapters []sidecarEntry `json:"chapters" yaml:"chapters"`
}

// Sidecar returns the path of an existing chapter file for the given media path.
func Sidecar(mediaPath string) mo.Option[string] {
	stem := strings.TrimSuffix(mediaPath, filepath.Ext(mediaPath))
	for _, ext := range sidecarExtensions {
		candidate := stem + ext
		if exists, _ := filesystem.API().Exists(candidate); exists {
			return mo.Some(candidate)
		}
	}
	return mo.None[string]()
}

// Load reads a JSON or YAML chapter file.
//
//	chapters:
//	  - title: Opening
//	    start: 0
//	  - title: Part A
//	    start: "1:30"
func Load(path string) (List, error) {
	data, err := filesystem.API().ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read chapters: %w", err)
	}

	var file sidecarFile
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(data, &file)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &file)
	default:
		return nil, fmt.Errorf("read chapters: unsupported format %q", filepath.Ext(path))
	}
	if err != nil {
		return nil, fmt.Errorf("parse chapters %s: %w", path, err)
	}

	return New(lo.Map(file.Chapters, func(e sidecarEntry, _ int) Chapter {
		c := Chapter{Title: e.Title, Start: float64(e.Start)}
		if e.End != nil {
			c.End = float64(*e.End)
		}
		return c
	})...), nil
}
