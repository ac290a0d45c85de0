// Command occlusion-demo walks a listener around an occluding wall in the terminal
package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/gopxl/beep"
	"github.com/spf13/cobra"

	"github.com/lixenwraith/occlusion/audio"
	"github.com/lixenwraith/occlusion/config"
	"github.com/lixenwraith/occlusion/tone"
)

var (
	cfgFile   string
	eventPath string
	musicPath string
	debugLog  bool
)

var rootCmd = &cobra.Command{
	Use:           "occlusion-demo",
	Short:         "Walk around an occluding wall and listen",
	Long:          `Top-down terminal scene with a listener, an occluding wall and an event emitter behind it. Music plays through a toggleable low-pass filter.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runDemo,
}

func init() {
	rootCmd.Flags().StringVarP(&cfgFile, "config", "c", "", "config file (YAML)")
	rootCmd.Flags().StringVar(&eventPath, "event", "", "event sound file, overrides assets.event_sound")
	rootCmd.Flags().StringVar(&musicPath, "music", "", "music file, overrides assets.music_stream")
	rootCmd.Flags().BoolVar(&debugLog, "debug", false, "write a debug log under "+logDir)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "occlusion-demo: %v\n", err)
		os.Exit(1)
	}
}

func runDemo(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	if eventPath != "" {
		cfg.Assets.EventSound = eventPath
	}
	if musicPath != "" {
		cfg.Assets.MusicStream = musicPath
	}

	if logFile := setupLogging(debugLog || cfg.Debug); logFile != nil {
		defer logFile.Close()
	}

	tmp, err := os.MkdirTemp("", "occlusion-demo-")
	if err != nil {
		return fmt.Errorf("creating asset dir: %w", err)
	}
	defer os.RemoveAll(tmp)

	if err := prepareAssets(&cfg.Assets, tmp, beep.SampleRate(cfg.Engine.SampleRate)); err != nil {
		return err
	}

	a := audio.New(cfg.Audio, audio.SpatialEngine(cfg.Engine.Options()...), audio.WithLogger(log.Default()))
	startAudio(a, cfg.Assets)
	defer func() {
		if err := a.Close(); err != nil {
			log.Printf("audio close: %v", err)
		}
	}()

	demo, err := newDemo(cfg, a)
	if err != nil {
		return fmt.Errorf("initializing terminal: %w", err)
	}
	defer demo.cleanup()

	demo.run()
	return nil
}

// prepareAssets fills empty asset paths with generated sounds written into dir
func prepareAssets(assets *config.AssetsConfig, dir string, rate beep.SampleRate) error {
	if assets.EventSound == "" {
		path := filepath.Join(dir, "event.wav")
		if err := tone.WriteWAV(path, tone.Bell(rate), rate); err != nil {
			return fmt.Errorf("generating event sound: %w", err)
		}
		assets.EventSound = path
	}
	if assets.MusicStream == "" {
		path := filepath.Join(dir, "music.wav")
		if err := tone.WriteWAV(path, tone.MusicLoop(rate), rate); err != nil {
			return fmt.Errorf("generating music: %w", err)
		}
		assets.MusicStream = path
	}
	return nil
}

// startAudio brings up the facade; the demo stays playable without sound
func startAudio(a *audio.Audio, assets config.AssetsConfig) {
	if err := a.Initialise(); err != nil {
		log.Printf("Audio disabled: %v", err)
		return
	}
	if err := a.LoadEventSound(assets.EventSound); err != nil {
		log.Printf("Event sound unavailable: %v", err)
	}
	if err := a.LoadMusicStream(assets.MusicStream); err != nil {
		log.Printf("Music unavailable: %v", err)
		return
	}
	if err := a.PlayMusicStream(); err != nil {
		log.Printf("Music failed to start: %v", err)
	}
}
