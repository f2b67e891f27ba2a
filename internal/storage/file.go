// Package storage persists a task list as a JSON array on disk.
package storage

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"
	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
	log "github.com/sirupsen/logrus"

	"tasktracker/internal/task"
)

// SeqSuffix is appended to the data path to name the id sequence sidecar.
const SeqSuffix = ".seq"

// taskFileSchema is the shape every element of the data file must have.
const taskFileSchema = `{
  "type": "array",
  "items": {
    "type": "object",
    "required": ["id", "title"],
    "additionalProperties": false,
    "properties": {
      "id": {"type": "integer", "minimum": 1},
      "title": {"type": "string", "pattern": "\\S"},
      "description": {"type": ["string", "null"]},
      "done": {"type": "boolean"}
    }
  }
}`

var schema = jsonschema.MustCompileString("tasks.schema.json", taskFileSchema)

// codec writes non-ASCII and HTML characters literally.
var codec = sonic.Config{ValidateString: true}.Froze()

// File is a handle on one task data file. It holds no task state; every
// Load reads the file again.
type File struct {
	path string
	log  log.FieldLogger
}

// New returns a handle for the data file at path.
func New(path string, logger log.FieldLogger) *File {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &File{path: path, log: logger.WithField("file", path)}
}

// Path returns the data file path.
func (f *File) Path() string {
	return f.path
}

func (f *File) seqPath() string {
	return f.path + SeqSuffix
}

// Load reads the task list. A missing or empty file is an empty list.
// Unreadable or malformed content is logged as a warning and also yields an
// empty list; Load never fails.
func (f *File) Load() task.List {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			f.log.WithError(err).Warn("cannot read task file, treating as empty")
		}
		return task.List{}
	}

	tasks, err := decode(data)
	if err != nil {
		f.log.WithError(err).Warn("malformed task file, treating as empty")
		return task.List{}
	}
	f.log.WithField("tasks", len(tasks)).Debug("loaded tasks")

	return task.List{Tasks: tasks, LastID: f.loadSeq()}
}

// decode validates data against the task file schema and unmarshals it.
func decode(data []byte) ([]task.Task, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	var raw interface{}
	if err := codec.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse task file: %w", err)
	}
	if err := schema.Validate(raw); err != nil {
		return nil, fmt.Errorf("validate task file: %w", err)
	}

	var tasks []task.Task
	if err := codec.Unmarshal(data, &tasks); err != nil {
		return nil, fmt.Errorf("decode task file: %w", err)
	}

	seen := make(map[int]bool, len(tasks))
	for _, t := range tasks {
		if seen[t.ID] {
			return nil, fmt.Errorf("duplicate task id %d", t.ID)
		}
		seen[t.ID] = true
	}
	return tasks, nil
}

// loadSeq returns the stored highest-assigned id, or 0 when unavailable.
func (f *File) loadSeq() int {
	data, err := os.ReadFile(f.seqPath())
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			f.log.WithError(err).Warn("cannot read id sequence")
		}
		return 0
	}
	n, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || n < 0 {
		f.log.WithField("content", strings.TrimSpace(string(data))).Warn("ignoring malformed id sequence")
		return 0
	}
	return n
}

// Save overwrites the data file with the full list, two-space indented, and
// records the id sequence next to it. Missing parent directories are created.
func (f *File) Save(l task.List) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	tasks := l.Tasks
	if tasks == nil {
		tasks = []task.Task{}
	}
	data, err := codec.MarshalIndent(tasks, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal tasks: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(f.path, data, 0644); err != nil {
		return fmt.Errorf("write task file: %w", err)
	}

	seq := l.HighestID()
	if err := os.WriteFile(f.seqPath(), []byte(strconv.Itoa(seq)+"\n"), 0644); err != nil {
		return fmt.Errorf("write id sequence: %w", err)
	}

	f.log.WithField("tasks", len(tasks)).Debug("saved tasks")
	return nil
}

// Clear deletes the data file and its id sequence. Missing files are fine.
func (f *File) Clear() error {
	for _, p := range []string{f.path, f.seqPath()} {
		if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("remove %s: %w", p, err)
		}
	}
	f.log.Debug("cleared tasks")
	return nil
}
