// Package manifest describes the content of a distribution folder.
package manifest

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/dawn-engine/dawn-compose/internal"
)

// Filename is the name of the manifest inside the distribution folder.
const Filename = "manifest.yaml"

type Manifest struct {
	Revision  string     `yaml:"revision,omitempty"`
	Mode      string     `yaml:"mode"`
	Artifacts []Artifact `yaml:"artifacts"`
}

type Artifact struct {
	Name string `yaml:"name"`
	Size int64  `yaml:"size"`
	Hash string `yaml:"sha256"`
}

// Build walks dist and records every regular file except the manifest itself.
// Artifact names are slash separated and relative to dist, in lexical order.
func Build(dist, mode, revision string) (Manifest, error) {
	result := Manifest{Revision: revision, Mode: mode, Artifacts: []Artifact{}}

	err := filepath.WalkDir(dist, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !entry.Type().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(dist, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if rel == Filename {
			return nil
		}

		artifact, err := hashFile(path)
		if err != nil {
			return fmt.Errorf("failed to hash %s: %w", rel, err)
		}
		artifact.Name = rel

		result.Artifacts = append(result.Artifacts, artifact)
		return nil
	})

	return result, err
}

func hashFile(path string) (artifact Artifact, err error) {
	file, err := os.Open(path)
	if err != nil {
		return Artifact{}, err
	}
	defer func() {
		err = internal.CloseError(err, file.Close())
	}()

	hash := sha256.New()
	size, err := io.Copy(hash, file)
	if err != nil {
		return Artifact{}, err
	}

	return Artifact{Size: size, Hash: hex.EncodeToString(hash.Sum(nil))}, nil
}

// Revision returns the HEAD commit of the git repository containing dir.
// It returns an empty string when dir is not inside a repository or when the
// repository has no commit yet.
func Revision(dir string) (string, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if errors.Is(err, git.ErrRepositoryNotExists) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to open git repo: %w", err)
	}

	head, err := repo.Head()
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to resolve head: %w", err)
	}

	return head.Hash().String(), nil
}
