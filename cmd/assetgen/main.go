// Command assetgen writes the demo's generated sounds as WAV files
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gopxl/beep"
	"github.com/spf13/cobra"

	"github.com/lixenwraith/occlusion/constant"
	"github.com/lixenwraith/occlusion/tone"
)

var (
	outDir     string
	sampleRate int
)

var rootCmd = &cobra.Command{
	Use:          "assetgen",
	Short:        "Generate event.wav and music.wav",
	SilenceUsage: true,
	RunE:         runAssetgen,
}

func init() {
	rootCmd.Flags().StringVarP(&outDir, "dir", "d", "assets", "output directory")
	rootCmd.Flags().IntVar(&sampleRate, "rate", constant.AudioSampleRate, "sample rate in Hz")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runAssetgen(cmd *cobra.Command, args []string) error {
	if sampleRate <= 0 {
		return fmt.Errorf("sample rate must be positive, got %d", sampleRate)
	}
	return generate(outDir, beep.SampleRate(sampleRate), cmd.OutOrStdout())
}


func generate(dir string, rate beep.SampleRate, out io.Writer) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}

	assets := []struct {
		name string
		s    beep.Streamer
	}{
		{"event.wav", tone.Bell(rate)},
		{"music.wav", tone.MusicLoop(rate)},
	}
	for _, a := range assets {
		path := filepath.Join(dir, a.name)
		if err := tone.WriteWAV(path, a.s, rate); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
		fmt.Fprintf(out, "wrote %s\n", path)
	}
	return nil
}
