// gtest compiles every C-minus program matched by -test-files and compares
// the five output files against a golden .name.json stored next to it.
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/google/go-cmp/cmp"

	"github.com/alizademhdi/C-minus-compiler/pkg/compiler"
	"github.com/alizademhdi/C-minus-compiler/pkg/config"
	"github.com/alizademhdi/C-minus-compiler/pkg/ir"
	"github.com/alizademhdi/C-minus-compiler/pkg/lalr"
	"github.com/alizademhdi/C-minus-compiler/pkg/parser"
)

type Execution struct {
	Files     map[string]string `json:"files"`
	Error     string            `json:"error,omitempty"`
	Accepted  bool              `json:"accepted"`
	Suspended bool              `json:"suspended,omitempty"`
	Duration  time.Duration     `json:"duration"`
}

type Golden struct {
	Hash   string    `json:"hash"`
	Format string    `json:"format"`
	Result Execution `json:"result"`
}

type FileTestResult struct {
	File    string     `json:"file"`
	Status  string     `json:"status"` // PASS, FAIL, SKIP, ERROR
	Message string     `json:"message,omitempty"`
	Diff    string     `json:"diff,omitempty"`
	Target  *Execution `json:"target,omitempty"`
}

type TestSuiteResults map[string]*FileTestResult

var (
	generateGolden = flag.String("generate-golden", "", "Generate a golden .json file for a given source file.")
	updateGolden   = flag.Bool("update", false, "Rewrite golden files whose source hash changed instead of failing.")
	testFiles      = flag.String("test-files", "tests/*.cm", "Glob pattern(s) for files to test (space-separated).")
	skipFiles      = flag.String("skip-files", "", "Files to skip (space-separated).")
	outputJSON     = flag.String("output", ".test_results.json", "Output file for the JSON test report.")
	listingFormat  = flag.String("format", "plain", "Listing format of output.txt (plain, tuple).")
	jobs           = flag.Int("j", 4, "Number of parallel test jobs.")
	verbose        = flag.Bool("v", false, "Enable verbose logging.")
	jsonDir        = flag.String("dir", "", "Directory to store/read golden JSON files (defaults to source file dir).")
)

const (
	cRed    = "\x1b[91m"
	cYellow = "\x1b[93m"
	cGreen  = "\x1b[92m"
	cCyan   = "\x1b[96m"
	cBold   = "\x1b[1m"
	cNone   = "\x1b[0m"
)

func main() {
	flag.Parse()
	log.SetFlags(0)
	setupInterruptHandler()

	format, err := ir.ParseFormat(*listingFormat)
	if err != nil {
		log.Fatalf("%s[ERROR]%s %v\n", cRed, cNone, err)
	}
	if *jobs < 1 {
		*jobs = 1
	}

	if *generateGolden != "" {
		handleGenerateGolden(*generateGolden, format)
		return
	}

	handleRunTestSuite(format)
}

func setupInterruptHandler() {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt)
	go func() {
		<-c
		fmt.Printf("\n%s[INTERRUPT]%s Test run cancelled.\n", cYellow, cNone)
		os.Exit(1)
	}()
}

func getJSONPath(sourceFile string) string {
	jsonFileName := "." + filepath.Base(sourceFile) + ".json"
	if *jsonDir != "" {
		return filepath.Join(*jsonDir, jsonFileName)
	}
	return filepath.Join(filepath.Dir(sourceFile), jsonFileName)
}

// hashFile computes the xxhash of a file's content
func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	h := xxhash.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return fmt.Sprintf("%x", h.Sum64()), nil
}

// compileFile runs the compiler in-process and captures every output file.
func compileFile(path string, format ir.Format) (*Execution, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	res, err := compiler.Compile([]rune(string(content)), 0, config.NewConfig(), lalr.Default())
	exec := &Execution{Duration: time.Since(start)}
	if res == nil {
		return nil, err
	}
	if err != nil && !errors.Is(err, parser.ErrUnexpectedEOF) {
		exec.Error = err.Error()
	}
	exec.Accepted = res.Accepted
	exec.Suspended = res.Suspended

	files, ferr := res.Files(format)
	if ferr != nil {
		return nil, ferr
	}
	exec.Files = make(map[string]string, len(files))
	for name, data := range files {
		exec.Files[name] = string(data)
	}
	return exec, nil
}

func writeGolden(sourceFile, fileHash string, exec *Execution) (string, error) {
	golden := Golden{Hash: fileHash, Format: *listingFormat, Result: *exec}
	data, err := json.MarshalIndent(golden, "", "  ")
	if err != nil {
		return "", err
	}
	goldenFileName := getJSONPath(sourceFile)
	if *jsonDir != "" {
		if err := os.MkdirAll(*jsonDir, 0755); err != nil {
			return "", err
		}
	}
	return goldenFileName, os.WriteFile(goldenFileName, data, 0644)
}

func handleGenerateGolden(sourceFile string, format ir.Format) {
	log.Printf("Generating golden file for %s...\n", sourceFile)

	fileHash, err := hashFile(sourceFile)
	if err != nil {
		log.Fatalf("%s[ERROR]%s Failed to hash source file: %v\n", cRed, cNone, err)
	}
	exec, err := compileFile(sourceFile, format)
	if err != nil {
		log.Fatalf("%s[ERROR]%s Failed to compile %s: %v\n", cRed, cNone, sourceFile, err)
	}
	goldenFileName, err := writeGolden(sourceFile, fileHash, exec)
	if err != nil {
		log.Fatalf("%s[ERROR]%s Failed to write golden file: %v\n", cRed, cNone, err)
	}
	log.Printf("%s[SUCCESS]%s Golden file created at %s\n", cGreen, cNone, goldenFileName)
}

func handleRunTestSuite(format ir.Format) {
	files, err := expandGlobPatterns(*testFiles)
	if err != nil {
		log.Fatalf("%s[ERROR]%s Invalid glob pattern(s): %v\n", cRed, cNone, err)
	}
	if len(files) == 0 {
		log.Println("No test files found matching the pattern(s).")
		return
	}

	skipList := make(map[string]bool)
	for _, f := range strings.Fields(*skipFiles) {
		if abs, err := filepath.Abs(f); err == nil {
			skipList[abs] = true
		}
	}

	// Build the parse table before the workers start.
	lalr.Default()

	type task struct{ file, hash string }
	tasks := make(chan task, len(files))
	resultsChan := make(chan *FileTestResult, len(files))
	var wg sync.WaitGroup

	for i := 0; i < *jobs; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for t := range tasks {
				resultsChan <- testFile(t.file, t.hash, format)
			}
		}()
	}

	// Feed the tasks channel, skipping files with identical content
	seenHashes := make(map[string]string)
	for _, file := range files {
		if skipList[file] {
			resultsChan <- &FileTestResult{File: file, Status: "SKIP", Message: "Explicitly skipped"}
			continue
		}
		fileHash, err := hashFile(file)
		if err != nil {
			resultsChan <- &FileTestResult{File: file, Status: "ERROR", Message: fmt.Sprintf("Failed to read file for hashing: %v", err)}
			continue
		}
		if originalFile, seen := seenHashes[fileHash]; seen {
			resultsChan <- &FileTestResult{File: file, Status: "SKIP", Message: fmt.Sprintf("Content is identical to %s", originalFile)}
			continue
		}
		seenHashes[fileHash] = file
		tasks <- task{file, fileHash}
	}
	close(tasks)

	wg.Wait()
	close(resultsChan)

	var allResults []*FileTestResult
	for result := range resultsChan {
		allResults = append(allResults, result)
	}
	sort.Slice(allResults, func(i, j int) bool {
		return allResults[i].File < allResults[j].File
	})

	printSummary(allResults)
	resultsMap := writeJSONReport(allResults)

	if hasFailures(resultsMap) {
		os.Exit(1)
	}
}

func testFile(file, fileHash string, format ir.Format) *FileTestResult {
	goldenFile := getJSONPath(file)
	goldenData, err := os.ReadFile(goldenFile)
	if errors.Is(err, os.ErrNotExist) {
		return &FileTestResult{File: file, Status: "SKIP", Message: "Cannot test without a corresponding .json golden file"}
	}
	if err != nil {
		return &FileTestResult{File: file, Status: "ERROR", Message: fmt.Sprintf("Could not read golden file %s: %v", goldenFile, err)}
	}
	var golden Golden
	if err := json.Unmarshal(goldenData, &golden); err != nil {
		return &FileTestResult{File: file, Status: "ERROR", Message: fmt.Sprintf("Could not parse golden file %s: %v", goldenFile, err)}
	}
	if golden.Format != "" && golden.Format != *listingFormat {
		return &FileTestResult{File: file, Status: "SKIP", Message: fmt.Sprintf("Golden file uses the %s listing format", golden.Format)}
	}

	target, err := compileFile(file, format)
	if err != nil {
		return &FileTestResult{File: file, Status: "ERROR", Message: fmt.Sprintf("Compilation aborted: %v", err)}
	}

	if golden.Hash != fileHash {
		if *updateGolden {
			if _, err := writeGolden(file, fileHash, target); err != nil {
				return &FileTestResult{File: file, Status: "ERROR", Message: fmt.Sprintf("Failed to update golden file: %v", err), Target: target}
			}
			return &FileTestResult{File: file, Status: "PASS", Message: "Source changed, golden file updated", Target: target}
		}
		return &FileTestResult{File: file, Status: "FAIL", Message: "Source changed since the golden file was generated (use -update)", Target: target}
	}

	if diff := cmp.Diff(golden.Result, *target, cmp.FilterPath(func(p cmp.Path) bool {
		return p.Last().String() == ".Duration"
	}, cmp.Ignore())); diff != "" {
		return &FileTestResult{File: file, Status: "FAIL", Message: "Output mismatch against golden file", Diff: diff, Target: target}
	}
	return &FileTestResult{File: file, Status: "PASS", Message: "Matches golden file", Target: target}
}

func printSummary(results []*FileTestResult) {
	var passed, failed, skipped, errored int
	var total time.Duration

	for _, result := range results {
		fmt.Println("----------------------------------------------------------------------")
		fmt.Printf("Testing %s%s%s...\n", cCyan, result.File, cNone)

		switch result.Status {
		case "PASS":
			passed++
			fmt.Printf("  [%sPASS%s] %s\n", cGreen, cNone, result.Message)
		case "FAIL":
			failed++
			fmt.Printf("  [%sFAIL%s] %s\n", cRed, cNone, result.Message)
			fmt.Println(formatDiff(result.Diff))
		case "SKIP":
			skipped++
			fmt.Printf("  [%sSKIP%s] %s\n", cYellow, cNone, result.Message)
		case "ERROR":
			errored++
			fmt.Printf("  [%sERROR%s] %s\n", cRed, cNone, result.Message)
		}

		if result.Target != nil {
			total += result.Target.Duration
			if *verbose {
				fmt.Printf("  compile: %s, accepted: %t, suspended: %t\n", formatDuration(result.Target.Duration), result.Target.Accepted, result.Target.Suspended)
			}
		}
	}

	fmt.Println("----------------------------------------------------------------------")
	fmt.Printf("%sTest Summary:%s %s%d Passed%s, %s%d Failed%s, %s%d Skipped%s, %s%d Errored%s, %d Total\n",
		cBold, cNone, cGreen, passed, cNone, cRed, failed, cNone, cYellow, skipped, cNone, cRed, errored, cNone, len(results))
	if *verbose && total > 0 {
		fmt.Printf("Total compile time: %s\n", formatDuration(total))
	}
}

func formatDuration(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%dµs", d.Microseconds())
	}
	return fmt.Sprintf("%.2fms", float64(d.Microseconds())/1000)
}

func formatDiff(diff string) string {
	if diff == "" {
		return ""
	}
	var builder strings.Builder
	builder.WriteString("    --- Diff ---\n")
	for _, line := range strings.Split(diff, "\n") {
		trimmedLine := strings.TrimSpace(line)
		if strings.HasPrefix(trimmedLine, "-") {
			builder.WriteString(cRed)
		} else if strings.HasPrefix(trimmedLine, "+") {
			builder.WriteString(cGreen)
		}
		builder.WriteString("    " + line)
		builder.WriteString(cNone)
		builder.WriteString("\n")
	}
	return builder.String()
}

func writeJSONReport(results []*FileTestResult) TestSuiteResults {
	resultsMap := make(TestSuiteResults, len(results))
	for _, r := range results {
		resultsMap[r.File] = r
	}

	jsonData, err := json.MarshalIndent(resultsMap, "", "  ")
	if err != nil {
		log.Printf("%s[ERROR]%s Failed to marshal results to JSON: %v\n", cRed, cNone, err)
		return resultsMap
	}

	outputFile := *outputJSON
	if *jsonDir != "" {
		if err := os.MkdirAll(*jsonDir, 0755); err != nil {
			log.Printf("%s[ERROR]%s Failed to create dir %s: %v\n", cRed, cNone, *jsonDir, err)
		}
		outputFile = filepath.Join(*jsonDir, *outputJSON)
	}

	if err := os.WriteFile(outputFile, jsonData, 0644); err != nil {
		log.Printf("%s[ERROR]%s Failed to write JSON report to %s: %v\n", cRed, cNone, outputFile, err)
	} else {
		fmt.Printf("Full test report saved to %s\n", outputFile)
	}
	return resultsMap
}

func hasFailures(results TestSuiteResults) bool {
	for _, result := range results {
		if result.Status == "FAIL" || result.Status == "ERROR" {
			return true
		}
	}
	return false
}

func expandGlobPatterns(patterns string) ([]string, error) {
	var allFiles []string
	seen := make(map[string]bool)
	for _, pattern := range strings.Fields(patterns) {
		files, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("bad pattern %s: %w", pattern, err)
		}
		for _, file := range files {
			absFile, err := filepath.Abs(file)
			if err != nil {
				continue
			}
			if !seen[absFile] {
				if info, err := os.Stat(absFile); err == nil && info.Mode().IsRegular() {
					allFiles = append(allFiles, absFile)
					seen[absFile] = true
				}
			}
		}
	}
	return allFiles, nil
}
