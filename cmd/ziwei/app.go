package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"ziwei/internal/chart"
	"ziwei/internal/config"
	"ziwei/internal/meaning"
	"ziwei/internal/profile"
	"ziwei/internal/store"
)

func loadConfig() (*config.ProjectConfig, error) {
	path := configPath
	if path == "" {
		path = config.DefaultPath
	}
	return config.LoadProjectConfig(path)
}

// loadOptionalConfig returns nil, nil when --config is unset and there is no
// ziwei.yaml in the working directory.
func loadOptionalConfig() (*config.ProjectConfig, error) {
	if configPath == "" {
		if _, err := os.Stat(config.DefaultPath); errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
	}
	return loadConfig()
}

func newEngine(cfg *config.ProjectConfig) *chart.Engine {
	opts := chart.Options{}
	if cfg != nil {
		opts.Layout = cfg.Layout()
	}
	return chart.NewEngine(opts)
}

// loadKnowledgeBase layers the configured meaning directories over the
// embedded knowledge base.
func loadKnowledgeBase(cfg *config.ProjectConfig) (*meaning.KnowledgeBase, error) {
	kb, err := meaning.Default()
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return kb, nil
	}
	for _, path := range cfg.KnowledgeBase.Paths {
		overlay, err := meaning.LoadDir(path)
		if err != nil {
			return nil, fmt.Errorf("loading knowledge base %s: %w", path, err)
		}
		logger.Debug("knowledge base overlay loaded", zap.String("path", path), zap.Int("entries", overlay.Len()))
		kb.Merge(overlay)
	}
	return kb, nil
}

// birthFlags are the flags shared by the commands that compute a chart.
type birthFlags struct {
	date       string
	lunar      bool
	leap       bool
	hourBranch int
	clock      string
	gender     string
	profile    string
}

func (f *birthFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.date, "date", "", "Birth date as YYYY-MM-DD")
	cmd.Flags().BoolVar(&f.lunar, "lunar", false, "Date is a lunar calendar date")
	cmd.Flags().BoolVar(&f.leap, "leap", false, "Lunar date falls in the leap month")
	cmd.Flags().IntVar(&f.hourBranch, "hour", -1, "Two-hour branch of birth, 0 (子) to 11 (亥)")
	cmd.Flags().StringVar(&f.clock, "time", "", "Clock time of birth as HH:MM")
	cmd.Flags().StringVar(&f.gender, "gender", "", "male or female")
}

func (f *birthFlags) registerProfile(cmd *cobra.Command) {
	f.register(cmd)
	cmd.Flags().StringVar(&f.profile, "profile", "", "Use the birth data of a stored profile")
}

func (f *birthFlags) birth() (store.Birth, error) {
	if strings.TrimSpace(f.date) == "" {
		return store.Birth{}, fmt.Errorf("--date or --profile is required")
	}
	year, month, day, err := profile.ParseDate(f.date)
	if err != nil {
		return store.Birth{}, err
	}
	b := store.Birth{
		Calendar:  store.CalendarSolar,
		Year:      year,
		Month:     month,
		Day:       day,
		LeapMonth: f.leap,
		Gender:    f.gender,
	}
	if f.lunar {
		b.Calendar = store.CalendarLunar
	}
	switch {
	case f.hourBranch >= 0:
		b.HourBranch = f.hourBranch
	case f.clock != "":
		if b.HourBranch, err = profile.ParseClock(f.clock); err != nil {
			return store.Birth{}, err
		}
	default:
		return store.Birth{}, fmt.Errorf("--hour or --time is required")
	}
	if err := profile.Validate(b); err != nil {
		return store.Birth{}, err
	}
	return b, nil
}

// resolve computes the chart for the flags, reading a stored profile when
// --profile is set. The returned name is empty for ad hoc birth data.
func (f *birthFlags) resolve(ctx context.Context) (*chart.Chart, string, error) {
	cfg, err := loadOptionalConfig()
	if err != nil {
		return nil, "", err
	}

	var (
		name  string
		birth store.Birth
	)
	if f.profile != "" {
		if cfg == nil {
			cfg, err = loadConfig()
			if err != nil {
				return nil, "", err
			}
		}
		db, err := openDB(ctx, cfg)
		if err != nil {
			return nil, "", err
		}
		defer db.Close(ctx)

		p, err := db.GetProfile(ctx, f.profile)
		if err != nil {
			return nil, "", fmt.Errorf("profile %q: %w", f.profile, err)
		}
		name, birth = p.Name, p.Birth
	} else {
		if birth, err = f.birth(); err != nil {
			return nil, "", err
		}
	}

	start := time.Now()
	c, err := profile.Chart(newEngine(cfg), birth)
	logger.Debug("chart computed", zap.Duration("elapsed", time.Since(start)), zap.Error(err))
	if err != nil {
		return nil, "", err
	}
	return c, name, nil
}
