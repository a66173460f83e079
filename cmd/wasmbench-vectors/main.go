package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"wasmbench/internal/task"
	"wasmbench/internal/util"
	"wasmbench/internal/vector"
)

func main() {
	output := flag.String("output", "vectors", "output directory for corpus files")
	tasks := flag.String("tasks", "", "comma-separated task names (default: all)")
	flag.Parse()

	log.SetOutput(os.Stdout)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	kinds := task.Kinds()
	if strings.TrimSpace(*tasks) != "" {
		kinds = kinds[:0]
		for _, name := range strings.Split(*tasks, ",") {
			kind, err := task.KindFromString(strings.TrimSpace(strings.ToLower(name)))
			if err != nil {
				fmt.Fprintf(os.Stderr, "%v\n", err)
				os.Exit(1)
			}
			kinds = append(kinds, kind)
		}
	}

	if err := os.MkdirAll(*output, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "create output dir: %v\n", err)
		os.Exit(1)
	}
	for _, kind := range kinds {
		vectors, err := vector.Generate(kind)
		if err != nil {
			fmt.Fprintf(os.Stderr, "generate %s corpus: %v\n", kind, err)
			os.Exit(1)
		}
		data, err := vector.Marshal(vectors)
		if err != nil {
			fmt.Fprintf(os.Stderr, "marshal %s corpus: %v\n", kind, err)
			os.Exit(1)
		}
		path := filepath.Join(*output, kind.String()+".json")
		if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "write %s: %v\n", path, err)
			os.Exit(1)
		}
		util.Infof("wrote %d vectors to %s", len(vectors), path)
	}
}
