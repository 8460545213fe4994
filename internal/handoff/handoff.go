// Package handoff builds the command lines that hand crawled URL lists to
// the external downloader. Nothing here runs the downloader.
package handoff

import (
	"fmt"
	"path/filepath"
	"strconv"

	"al.essio.dev/pkg/shellescape"

	"coubcrawl/pkg/config"
	"coubcrawl/pkg/output"
)

// RepostsDir is the subdirectory that receives downloaded reposts
const RepostsDir = "Reposts"

// defaultLoops is the downloader's repeat count when loops is unset
const defaultLoops = 1000

// Settings are the downloader options baked into every command
type Settings struct {
	Command     []string
	InfoDir     string
	OutputPath  string
	DataDir     string
	ArchiveFile string
	WaitTime    float64
	Loops       int
	Quality     string
	Keep        bool
}

// SettingsFromConfig extracts downloader settings from the app config
func SettingsFromConfig(cfg *config.Config) Settings {
	return Settings{
		Command:     cfg.Download.Command,
		InfoDir:     cfg.Output.InfoDir,
		OutputPath:  cfg.Download.OutputPath,
		DataDir:     cfg.Download.DataDir,
		ArchiveFile: cfg.Download.ArchiveFile,
		WaitTime:    cfg.Crawl.WaitTime,
		Loops:       cfg.Download.Loops,
		Quality:     cfg.Download.Quality,
		Keep:        cfg.Download.KeepAudioVideo,
	}
}

// Lister is the part of the output store the builder needs
type Lister interface {
	HasURLList(category string) bool
	HasRepostList(category string) bool
	CountURLs(category string) (int, error)
	CountRepostURLs(category string) (int, error)
	Categories() ([]string, error)
}

var _ Lister = (*output.Store)(nil)

// Command is one downloader invocation
type Command struct {
	Category string
	Reposts  bool
	// List is the URL list handed to the downloader
	List string
	// Target is the output filename template
	Target string
	// URLs is the number of links in List
	URLs int
	Args []string
}

// String renders the command as a single POSIX shell line
func (c Command) String() string {
	return shellescape.QuoteCommand(c.Args)
}

// Plan is the set of commands for a handoff, in category order
type Plan struct {
	Commands []Command
	// Skipped lists categories with no URL list
	Skipped []string
}

// Builder turns categories into downloader commands
type Builder struct {
	settings Settings
	store    Lister
}

// New creates a builder
func New(settings Settings, store Lister) *Builder {
	return &Builder{settings: settings, store: store}
}

// Build plans commands for the given categories. With no categories every
// category directory in the info dir is considered. Each category with a
// URL list yields one command, plus a second one for its repost list when
// that exists.
func (b *Builder) Build(categories []string) (*Plan, error) {
	if len(b.settings.Command) == 0 {
		return nil, fmt.Errorf("downloader command is empty")
	}

	if len(categories) == 0 {
		found, err := b.store.Categories()
		if err != nil {
			return nil, err
		}
		categories = found
	}

	plan := &Plan{}
	for _, category := range categories {
		if !b.store.HasURLList(category) {
			plan.Skipped = append(plan.Skipped, category)
			continue
		}

		cmd := b.command(category, false)
		count, err := b.store.CountURLs(category)
		if err != nil {
			return nil, fmt.Errorf("failed to count URLs for %s: %w", category, err)
		}
		cmd.URLs = count
		plan.Commands = append(plan.Commands, cmd)

		if b.store.HasRepostList(category) {
			reposts := b.command(category, true)
			count, err := b.store.CountRepostURLs(category)
			if err != nil {
				return nil, fmt.Errorf("failed to count repost URLs for %s: %w", category, err)
			}
			reposts.URLs = count
			plan.Commands = append(plan.Commands, reposts)
		}
	}

	return plan, nil
}

func (b *Builder) command(category string, reposts bool) Command {
	s := b.settings

	list := filepath.Join(s.InfoDir, category, output.URLListFile)
	targetDir := filepath.Join(s.OutputPath, s.DataDir, category)
	if reposts {
		list = filepath.Join(s.InfoDir, category, output.RepostURLListFile)
		targetDir = filepath.Join(targetDir, RepostsDir)
	}
	target := filepath.Join(targetDir, "%id%_%title%")

	loops := s.Loops
	if loops <= 0 {
		loops = defaultLoops
	}

	args := append([]string(nil), s.Command...)
	args = append(args,
		"-l", list,
		"-o", target,
		"--use-archive", filepath.Join(s.InfoDir, s.ArchiveFile),
		"--sleep", strconv.FormatFloat(s.WaitTime, 'f', -1, 64),
		"--repeat", strconv.Itoa(loops),
	)
	if flag := qualityFlag(s.Quality); flag != "" {
		args = append(args, flag)
	}
	if s.Keep {
		args = append(args, "--keep")
	}

	return Command{
		Category: category,
		Reposts:  reposts,
		List:     list,
		Target:   target,
		Args:     args,
	}
}

func qualityFlag(quality string) string {
	switch quality {
	case config.QualityHighest:
		return "--bestvideo"
	case config.QualityMedium:
		return "--mediumvideo"
	case config.QualityLow:
		return "--worstvideo"
	default:
		return ""
	}
}
