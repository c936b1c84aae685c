package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/repofab/repofab/pkg/object"
	"github.com/repofab/repofab/pkg/repo"
)

// manifest is the TOML description of a repository to synthesize.
type manifest struct {
	Author   *manifestIdentity `toml:"author"`
	Branches []manifestBranch  `toml:"branch"`
}

type manifestIdentity struct {
	Name  string `toml:"name"`
	Email string `toml:"email"`
}

type manifestBranch struct {
	Name    string           `toml:"name"`
	Commits []manifestCommit `toml:"commit"`
}

type manifestCommit struct {
	Message string            `toml:"message"`
	Date    time.Time         `toml:"date"`
	Author  *manifestIdentity `toml:"author"`
	Files   []manifestFile    `toml:"file"`
	Tags    []manifestTag     `toml:"tag"`
}

type manifestFile struct {
	Path    string `toml:"path"`
	Content string `toml:"content"`
	Perms   string `toml:"perms"`
	Symlink bool   `toml:"symlink"`
}

type manifestTag struct {
	Name    string            `toml:"name"`
	Message string            `toml:"message"`
	Tagger  *manifestIdentity `toml:"tagger"`
}

func loadManifest(path string) (*manifest, error) {
	var m manifest
	if _, err := toml.DecodeFile(path, &m); err != nil {
		return nil, fmt.Errorf("load manifest %s: %w", path, err)
	}
	return &m, nil
}

// build assembles the in-memory repository the manifest describes.
func (m *manifest) build() (*repo.Repository, error) {
	r := repo.New()
	for _, mb := range m.Branches {
		if strings.TrimSpace(mb.Name) == "" {
			return nil, fmt.Errorf("build: branch name is required")
		}
		b := r.NewBranch(mb.Name)
		for i, mc := range mb.Commits {
			author := mc.Author
			if author == nil {
				author = m.Author
			}
			if author == nil {
				return nil, fmt.Errorf("build: branch %q commit %d: no author and no default author", mb.Name, i+1)
			}

			c := b.Commit(mc.Message)
			c.SetAuthor(object.Signature{Name: author.Name, Email: author.Email})
			if !mc.Date.IsZero() {
				c.SetDate(mc.Date)
			}

			for _, mf := range mc.Files {
				content := []byte(mf.Content)
				_, err := c.Insert(mf.Path, func(f *object.File) {
					f.SetContent(content)
					if mf.Perms != "" {
						f.SetPermissions(mf.Perms)
					}
					if mf.Symlink {
						f.SetSymlink(true)
					}
				})
				if err != nil {
					return nil, fmt.Errorf("build: branch %q commit %d: %w", mb.Name, i+1, err)
				}
			}

			for _, mt := range mc.Tags {
				if strings.TrimSpace(mt.Name) == "" {
					return nil, fmt.Errorf("build: branch %q commit %d: tag name is required", mb.Name, i+1)
				}
				var t *object.Tag
				if mt.Message != "" {
					t = c.AnnotatedTag(mt.Name, mt.Message)
				} else {
					t = c.Tag(mt.Name)
				}
				if mt.Tagger != nil {
					t.SetTagger(object.Signature{Name: mt.Tagger.Name, Email: mt.Tagger.Email})
				}
			}
		}
	}
	return r, nil
}

func buildFromManifest(path string) (*repo.Repository, error) {
	m, err := loadManifest(path)
	if err != nil {
		return nil, err
	}
	return m.build()
}
