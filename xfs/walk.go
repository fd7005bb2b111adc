package xfs

import (
	"errors"
	"io/fs"
	"iter"
	"log/slog"
	"path"
)

// Entry is one node found by SafeEnumerate. Path is slash separated and
// rooted like the root passed in.
type Entry struct {
	Path string
	fs.DirEntry
}

// Options tune SafeEnumerate.
type Options struct {
	// Logger receives a debug record for every skipped node. nil is silent.
	Logger *slog.Logger
	// OnError is called for every skipped node after logging.
	OnError func(path string, err error)

	// Files and Dirs select the kinds of entries yielded. Leaving both false
	// yields both. Directories are descended into either way.
	Files bool
	Dirs  bool

	// Match is a path.Match pattern applied to the base name of yielded
	// entries. Empty matches everything.
	Match string
}

func (o Options) report(p string, err error) {
	if o.Logger != nil {
		msg := "skipping unreadable path"
		if errors.Is(err, fs.ErrPermission) {
			msg = "skipping path: permission denied"
		}
		o.Logger.Debug(msg, "path", p, "error", err)
	}
	if o.OnError != nil {
		o.OnError(p, err)
	}
}

func (o Options) wants(d fs.DirEntry) bool {
	if o.Files != o.Dirs && d.IsDir() != o.Dirs {
		return false
	}
	if o.Match == "" {
		return true
	}
	ok, _ := path.Match(o.Match, d.Name())
	return ok
}

// SafeEnumerate walks the tree below root depth first, yielding each entry
// before its children, and siblings in name order. root itself is not
// yielded. Symbolic links are reported but not followed.
//
// Nodes that cannot be read, most often because of fs.ErrPermission, are
// reported through opts and skipped; the walk goes on with the next
// sibling. A malformed Match pattern is reported once and yields nothing.
//
// Example:
//
//	for e := range xfs.SafeEnumerate(os.DirFS("/var/data"), ".", xfs.Options{Files: true, Match: "*.csv"}) {
//	    fmt.Println(e.Path)
//	}
func SafeEnumerate(fsys fs.FS, root string, opts Options) iter.Seq[Entry] {
	return func(yield func(Entry) bool) {
		if opts.Match != "" {
			if _, err := path.Match(opts.Match, ""); err != nil {
				opts.report(root, err)
				return
			}
		}
		info, err := fs.Stat(fsys, root)
		if err != nil {
			opts.report(root, err)
			return
		}
		if !info.IsDir() {
			return
		}

		// The stack holds entries still to visit, last sibling at the bottom.
		var stack []Entry
		push := func(dir string) {
			ents, err := fs.ReadDir(fsys, dir)
			if err != nil {
				opts.report(dir, err)
				return
			}
			for i := len(ents) - 1; i >= 0; i-- {
				stack = append(stack, Entry{Path: path.Join(dir, ents[i].Name()), DirEntry: ents[i]})
			}
		}

		push(root)
		for len(stack) > 0 {
			e := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if opts.wants(e) && !yield(e) {
				return
			}
			if e.IsDir() {
				push(e.Path)
			}
		}
	}
}

// DirSize returns the total size of the regular files below root. Nodes
// that cannot be read are skipped; only an unreadable root is an error.
func DirSize(fsys fs.FS, root string) (int64, error) {
	info, err := fs.Stat(fsys, root)
	if err != nil {
		return 0, err
	}
	if !info.IsDir() {
		return info.Size(), nil
	}
	var total int64
	for e := range SafeEnumerate(fsys, root, Options{Files: true}) {
		if !e.Type().IsRegular() {
			continue
		}
		fi, err := e.Info()
		if err != nil {
			continue
		}
		total += fi.Size()
	}
	return total, nil
}
