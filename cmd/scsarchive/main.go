// Command scsarchive reads game-data archives produced by the trucksim
// title family and extracts entries or assembles the cross-referenced
// map data bundle from them.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/trucksim/scsarchive"
	"github.com/trucksim/scsarchive/worldmap"
)

var (
	verbose    bool
	outputPath string
	saltFlag   uint16

	platformTag string
	mapNamesArg []string

	defsPath string
)

func openArchives(paths []string) ([]scsarchive.Archive, *scsarchive.Overlay, error) {
	var archives []scsarchive.Archive
	for _, p := range paths {
		a, err := scsarchive.Open(p, nil)
		if err != nil {
			closeAll(archives)
			return nil, nil, fmt.Errorf("opening %s: %w", p, err)
		}
		if err := a.ParseEntries(); err != nil {
			log.Printf("warning: %s: failed to parse entries: %v", p, err)
		}
		archives = append(archives, a)
	}
	return archives, scsarchive.NewOverlay(archives...), nil
}

func closeAll(archives []scsarchive.Archive) {
	for _, a := range archives {
		a.Close()
	}
}

func runExtract(cmd *cobra.Command, args []string) error {
	archivePaths := args[:len(args)-1]
	virtualPath := args[len(args)-1]

	archives, combined, err := openArchives(archivePaths)
	if err != nil {
		return err
	}
	defer closeAll(archives)

	arc, entry, ok := combined.LookupFile(virtualPath, saltFlag)
	if !ok {
		return fmt.Errorf("entry %q not found in any of %d archive(s)", virtualPath, len(archivePaths))
	}

	data, err := arc.Read(entry)
	if err != nil {
		return fmt.Errorf("reading %q: %w", virtualPath, err)
	}

	out := io.Writer(os.Stdout)
	if outputPath != "" {
		f, err := os.Create(outputPath)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}
	_, err = out.Write(data)
	return err
}

// platformMapLabel maps a platform tag to its onlyDefs map label, per
// the external interfaces contract: "usa" for "ats", "europe" for "eut2".
func platformMapLabel(tag string) string {
	switch tag {
	case "eut2":
		return "europe"
	default:
		return "usa"
	}
}

func runDefs(cmd *cobra.Command, args []string) error {
	archives, combined, err := openArchives(args)
	if err != nil {
		return err
	}
	defer closeAll(archives)

	version, err := scsarchive.ReadPackVersion(combined)
	if err != nil {
		log.Printf("warning: reading pack version: %v", err)
	}

	var defs worldmap.DefinitionSet
	if defsPath != "" {
		raw, err := os.ReadFile(defsPath)
		if err != nil {
			return fmt.Errorf("reading definitions file: %w", err)
		}
		if err := json.Unmarshal(raw, &defs); err != nil {
			return fmt.Errorf("parsing definitions file: %w", err)
		}
	}

	out := struct {
		Map     string                  `json:"map"`
		Version string                  `json:"version"`
		Defs    worldmap.DefinitionSet  `json:"definitions"`
	}{
		Map:     platformMapLabel(platformTag),
		Version: version,
		Defs:    defs,
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// sectorParserFactory, when non-nil, supplies the external per-sector
// binary parser. The CLI ships with none wired in (the parser is a
// narrow interface this module deliberately does not implement); a
// downstream build can set this before calling rootCmd.Execute.
var sectorParserFactory func() worldmap.SectorParser

func runMap(cmd *cobra.Command, args []string) error {
	if sectorParserFactory == nil {
		return fmt.Errorf("no sector parser registered: the map subcommand requires a build with an external sector parser wired in via sectorParserFactory")
	}

	archives, combined, err := openArchives(args)
	if err != nil {
		return err
	}
	defer closeAll(archives)

	var defs worldmap.DefinitionSet
	if defsPath != "" {
		raw, err := os.ReadFile(defsPath)
		if err != nil {
			return fmt.Errorf("reading definitions file: %w", err)
		}
		if err := json.Unmarshal(raw, &defs); err != nil {
			return fmt.Errorf("parsing definitions file: %w", err)
		}
	}

	locale, err := scsarchive.ReadLocale(combined, "en_us")
	if err != nil {
		log.Printf("warning: reading locale: %v", err)
		locale = map[string]string{}
	}

	opts := worldmap.Options{
		MapNames:            mapNamesArg,
		PlatformDefaultMap:  platformMapLabel(platformTag),
	}

	sectors, err := worldmap.AggregateSectors(combined, sectorParserFactory(), opts)
	if err != nil {
		return fmt.Errorf("aggregating sectors: %w", err)
	}

	result, err := worldmap.AssembleMap(sectors, defs, map[string][]byte{}, locale, opts)
	if err != nil {
		return fmt.Errorf("assembling map: %w", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "scsarchive",
		Short: "A game-data archive reader and map assembler",
		Long:  "Reads V1/V2/ZIP game-data archives and assembles the cross-referenced world map from their contents.",
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("scsarchive 0.1.0")
		},
	}

	extractCmd := &cobra.Command{
		Use:   "extract <archive...> <path>",
		Short: "Extract one entry from a set of overlaid archives",
		Args:  cobra.MinimumNArgs(2),
		RunE:  runExtract,
	}
	extractCmd.Flags().StringVarP(&outputPath, "output", "o", "", "write to this file instead of stdout")
	extractCmd.Flags().Uint16Var(&saltFlag, "salt", 0, "hash salt to apply when resolving the lookup path")

	defsCmd := &cobra.Command{
		Use:   "defs <archive...>",
		Short: "Emit only the definition dictionaries (onlyDefs mode)",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runDefs,
	}
	defsCmd.Flags().StringVar(&platformTag, "platform", "ats", "platform tag (ats or eut2)")
	defsCmd.Flags().StringVar(&defsPath, "defs", "", "path to a JSON-encoded DefinitionSet")

	mapCmd := &cobra.Command{
		Use:   "map <archive...>",
		Short: "Assemble and emit the full map data bundle",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runMap,
	}
	mapCmd.Flags().StringVar(&platformTag, "platform", "ats", "platform tag (ats or eut2)")
	mapCmd.Flags().StringVar(&defsPath, "defs", "", "path to a JSON-encoded DefinitionSet")
	mapCmd.Flags().StringSliceVar(&mapNamesArg, "maps", nil, "map names to aggregate (defaults to directory discovery, then the platform default)")

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.AddCommand(versionCmd, extractCmd, defsCmd, mapCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
