// Package media answers "show me" questions with images from the IMDb
// image index.
package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"regexp"
	"strings"

	"github.com/goccy/go-json"

	"github.com/AlbeMasera/ATAI/internal/core/model"
	"github.com/AlbeMasera/ATAI/internal/logging"
)

var requestRe = regexp.MustCompile(`(?i)\b(pictures?|images?|photos?|posters?|looks? like|show me)\b`)

// IsRequest reports whether query asks for an image.
func IsRequest(query string) bool {
	return requestRe.MatchString(query)
}

type imageEntry struct {
	Img   string   `json:"img"`
	Cast  []string `json:"cast"`
	Movie []string `json:"movie"`
}

// Index maps IMDb ids of people and movies to the first image showing them.
type Index struct {
	byID map[string]string
}

func LoadIndex(path string) (*Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image index '%s': %w", path, err)
	}
	defer f.Close()

	idx, err := ReadIndex(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read image index '%s': %w", path, err)
	}
	return idx, nil
}

func ReadIndex(r io.Reader) (*Index, error) {
	var entries []imageEntry
	if err := json.NewDecoder(r).Decode(&entries); err != nil {
		return nil, err
	}

	idx := &Index{byID: make(map[string]string)}
	for _, e := range entries {
		if e.Img == "" {
			continue
		}
		for _, id := range append(append([]string(nil), e.Cast...), e.Movie...) {
			if _, ok := idx.byID[id]; !ok {
				idx.byID[id] = e.Img
			}
		}
	}
	return idx, nil
}

// Image returns the image path of id without its file extension.
func (i *Index) Image(id string) (string, bool) {
	img, ok := i.byID[id]
	if !ok {
		return "", false
	}
	return strings.TrimSuffix(img, path.Ext(img)), true
}

func (i *Index) Len() int { return len(i.byID) }

type Extractor interface {
	ExtractSingle(ctx context.Context, text string, isQuestion bool) (model.NamedEntity, error)
}

type Graph interface {
	FindPerson(ctx context.Context, label string) (model.Term, error)
	FindMovie(ctx context.Context, label string) (model.Term, error)
	LabelOf(ctx context.Context, node model.Term) (string, error)
	IMDbID(ctx context.Context, node model.Term) (string, error)
}

type Service struct {
	extractor Extractor
	graph     Graph
	index     *Index
}

func NewService(extractor Extractor, graph Graph, index *Index) *Service {
	return &Service{extractor: extractor, graph: graph, index: index}
}

// Answer finds the person or movie named in query and returns its image.
// model.ErrNoEntityFound when nothing is named, model.ErrNotFound when the
// entity has no image.
func (s *Service) Answer(ctx context.Context, query string) (model.Answer, error) {
	entity, err := s.extractor.ExtractSingle(ctx, query, true)
	if err != nil {
		return model.Answer{}, err
	}

	for _, find := range []func(context.Context, string) (model.Term, error){s.graph.FindPerson, s.graph.FindMovie} {
		node, err := find(ctx, entity.Text)
		if errors.Is(err, model.ErrNotFound) {
			continue
		}
		if err != nil {
			return model.Answer{}, err
		}

		id, err := s.graph.IMDbID(ctx, node)
		if err != nil {
			continue
		}
		img, ok := s.index.Image(id)
		if !ok {
			logging.Ctx(ctx).Debug().Str("imdb", id).Msg("no image for entity")
			continue
		}
		name, err := s.graph.LabelOf(ctx, node)
		if err != nil {
			name = entity.Text
		}
		return model.FromImage(name, img), nil
	}
	return model.Answer{}, fmt.Errorf("%w: no image of %q", model.ErrNotFound, entity.Text)
}
