// Package passage supplies race texts.
package passage

import (
	"errors"
	"fmt"
	"math/rand"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const Default = "This is a simple typing competition test text. Good luck!"

var ErrEmptyCorpus = errors.New("corpus has no passages")

type corpusFile struct {
	Passages []struct {
		Title string `yaml:"title"`
		Text  string `yaml:"text"`
	} `yaml:"passages"`
}

// Source hands out passages at random.
type Source struct {
	passages []string
}

func NewSource(passages ...string) *Source {
	if len(passages) == 0 {
		passages = []string{Default}
	}
	return &Source{passages: passages}
}

// Load reads a YAML corpus:
//
//	passages:
//	  - title: fox
//	    text: The quick brown fox...
func Load(path string) (*Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read corpus: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Source, error) {
	var file corpusFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse corpus: %w", err)
	}
	passages := make([]string, 0, len(file.Passages))
	for _, p := range file.Passages {
		text := strings.Join(strings.Fields(p.Text), " ")
		if text != "" {
			passages = append(passages, text)
		}
	}
	if len(passages) == 0 {
		return nil, ErrEmptyCorpus
	}
	return &Source{passages: passages}, nil
}

func (s *Source) Fetch() string {
	return s.passages[rand.Intn(len(s.passages))]
}

func (s *Source) Len() int {
	return len(s.passages)
}
