package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"wasmbench/internal/config"
	"wasmbench/internal/report"
	"wasmbench/internal/util"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// FileContent holds inlined run file content.
type FileContent struct {
	Name      string `json:"name"`
	Content   string `json:"content"`
	Truncated bool   `json:"truncated"`
}

// RunEntry represents one benchmark run in the manifest.
type RunEntry struct {
	ID             string                 `json:"id"`
	Dir            string                 `json:"dir"`
	Timestamp      string                 `json:"timestamp"`
	Seed           uint32                 `json:"seed"`
	Baseline       string                 `json:"baseline"`
	Candidate      string                 `json:"candidate"`
	Tasks          []string               `json:"tasks"`
	Passed         int                    `json:"passed"`
	Failed         int                    `json:"failed"`
	Comparisons    int                    `json:"comparisons"`
	ArchiveName    string                 `json:"archive_name"`
	ArchiveCodec   string                 `json:"archive_codec"`
	ArchiveURL     string                 `json:"archive_url"`
	UploadLocation string                 `json:"upload_location"`
	Files          map[string]FileContent `json:"files"`
}

// SiteData is the JSON payload for the static site.
type SiteData struct {
	GeneratedAt string     `json:"generated_at"`
	Source      string     `json:"source"`
	Runs        []RunEntry `json:"runs"`
}

type loadOptions struct {
	MaxBytes              int
	ArtifactPublicBaseURL string
}

type publishOptions struct {
	S3            config.S3Config
	PublicBaseURL string
}

var inlinedFiles = []string{"summary.json", "validation.json", "comparisons.json", "stability.json"}

func main() {
	input := flag.String("input", "reports", "input directory or s3://bucket/prefix")
	output := flag.String("output", "web/public", "output directory for report.json/reports.json")
	configPath := flag.String("config", "config.yaml", "path to config file (for S3 access)")
	maxBytes := flag.Int("max-bytes", 256*1024, "max bytes to read per run file")
	publishEndpoint := flag.String("publish-endpoint", "", "S3-compatible endpoint for publishing report manifests")
	publishRegion := flag.String("publish-region", "auto", "region for publish endpoint")
	publishBucket := flag.String("publish-bucket", "", "target bucket for publishing report manifests")
	publishPrefix := flag.String("publish-prefix", "", "target prefix for publishing report manifests")
	publishAccessKey := flag.String("publish-access-key-id", "", "access key for publishing report manifests")
	publishSecret := flag.String("publish-secret-access-key", "", "secret key for publishing report manifests")
	publishSessionToken := flag.String("publish-session-token", "", "session token for publishing report manifests")
	publishUsePathStyle := flag.Bool("publish-use-path-style", true, "whether to use path-style S3 addressing for publish endpoint")
	publishPublicBaseURL := flag.String("publish-public-base-url", "", "public base URL for published manifests")
	artifactPublicBaseURL := flag.String("artifact-public-base-url", "", "public HTTP(S) base URL used to derive archive links from s3 upload locations")
	flag.Parse()

	opts := loadOptions{
		MaxBytes:              *maxBytes,
		ArtifactPublicBaseURL: strings.TrimSpace(*artifactPublicBaseURL),
	}
	ctx := context.Background()

	var runs []RunEntry
	var err error
	if strings.HasPrefix(*input, "s3://") {
		cfg, loadErr := config.Load(*configPath)
		if loadErr != nil {
			fail("load config: %v", loadErr)
		}
		bucket, prefix, parseErr := parseS3URI(*input)
		if parseErr != nil {
			fail("parse s3 input: %v", parseErr)
		}
		if !cfg.Storage.S3.Enabled {
			fail("s3 input requested but storage.s3.enabled is false")
		}
		runs, err = loadS3Runs(ctx, cfg.Storage.S3, bucket, prefix, opts)
	} else {
		runs, err = loadLocalRuns(*input, opts)
	}
	if err != nil {
		fail("load runs: %v", err)
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp > runs[j].Timestamp
	})

	site := SiteData{
		GeneratedAt: time.Now().Format(time.RFC3339),
		Source:      *input,
		Runs:        runs,
	}
	if err := writeJSON(*output, site); err != nil {
		fail("write json: %v", err)
	}

	publishCfg := publishOptions{
		S3: config.S3Config{
			Enabled:         strings.TrimSpace(*publishBucket) != "",
			Endpoint:        strings.TrimSpace(*publishEndpoint),
			Region:          strings.TrimSpace(*publishRegion),
			Bucket:          strings.TrimSpace(*publishBucket),
			Prefix:          strings.TrimSpace(*publishPrefix),
			AccessKeyID:     strings.TrimSpace(*publishAccessKey),
			SecretAccessKey: strings.TrimSpace(*publishSecret),
			SessionToken:    strings.TrimSpace(*publishSessionToken),
			UsePathStyle:    *publishUsePathStyle,
		},
		PublicBaseURL: strings.TrimSpace(*publishPublicBaseURL),
	}
	manifestURL, err := publishReports(ctx, publishCfg, *output)
	if err != nil {
		fail("publish reports: %v", err)
	}
	if manifestURL != "" {
		fmt.Printf("published report manifests to %s\n", manifestURL)
	}

	fmt.Printf("report json written to %s and %s\n", filepath.Join(*output, "report.json"), filepath.Join(*output, "reports.json"))
}

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

func loadLocalRuns(root string, opts loadOptions) ([]RunEntry, error) {
	dirs, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}
	runs := make([]RunEntry, 0, len(dirs))
	for _, dirEntry := range dirs {
		if !dirEntry.IsDir() {
			continue
		}
		dir := filepath.Join(root, dirEntry.Name())
		if _, err := os.Stat(filepath.Join(dir, "summary.json")); err != nil {
			continue
		}
		entry, err := readRunFromDir(dir, opts)
		if err != nil {
			continue
		}
		entry.Dir = dir
		if strings.TrimSpace(entry.ID) == "" {
			entry.ID = dirEntry.Name()
		}
		runs = append(runs, entry)
	}
	return runs, nil
}

func readRunFromDir(dir string, opts loadOptions) (RunEntry, error) {
	data, err := os.ReadFile(filepath.Join(dir, "summary.json"))
	if err != nil {
		return RunEntry{}, err
	}
	var summary report.Summary
	if err := json.Unmarshal(data, &summary); err != nil {
		return RunEntry{}, err
	}
	files := map[string]FileContent{}
	for _, name := range inlinedFiles {
		files[name] = mustReadFile(filepath.Join(dir, name), opts.MaxBytes)
	}
	if _, err := os.Stat(filepath.Join(dir, report.RunArchiveName)); err == nil {
		files[report.RunArchiveName] = FileContent{Name: report.RunArchiveName, Content: "(binary)", Truncated: true}
	}
	return entryFromSummary(summary, filepath.Base(dir), files, opts), nil
}

func entryFromSummary(summary report.Summary, fallbackID string, files map[string]FileContent, opts loadOptions) RunEntry {
	entry := RunEntry{
		ID:             strings.TrimSpace(summary.RunID),
		Timestamp:      summary.Timestamp,
		Seed:           summary.Seed,
		Baseline:       summary.Baseline,
		Candidate:      summary.Candidate,
		Tasks:          summary.Tasks,
		Comparisons:    summary.Comparisons,
		ArchiveName:    summary.ArchiveName,
		ArchiveCodec:   summary.ArchiveCodec,
		UploadLocation: summary.UploadLocation,
		Files:          files,
	}
	if entry.ID == "" {
		entry.ID = fallbackID
	}
	for _, v := range summary.Validation {
		entry.Passed += v.Passed
		entry.Failed += v.Failed
	}
	entry.ArchiveURL = deriveUploadObjectURL(summary.UploadLocation, summary.ArchiveName, opts.ArtifactPublicBaseURL)
	return entry
}

func mustReadFile(path string, maxBytes int) FileContent {
	content, truncated, err := readFileLimited(path, maxBytes)
	if err != nil {
		return FileContent{Name: filepath.Base(path)}
	}
	return FileContent{Name: filepath.Base(path), Content: content, Truncated: truncated}
}

func readFileLimited(path string, maxBytes int) (string, bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", false, err
	}
	defer util.CloseWithErr(f, "report input")
	limit := int64(maxBytes) + 1
	data, err := io.ReadAll(io.LimitReader(f, limit))
	if err != nil {
		return "", false, err
	}
	truncated := len(data) > maxBytes
	if truncated {
		data = data[:maxBytes]
	}
	return string(data), truncated, nil
}

func writeJSON(output string, site SiteData) error {
	if err := os.MkdirAll(output, 0o755); err != nil {
		return err
	}
	if err := writeJSONFile(filepath.Join(output, "report.json"), site); err != nil {
		return err
	}
	return writeJSONFile(filepath.Join(output, "reports.json"), site)
}

func writeJSONFile(path string, site SiteData) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer util.CloseWithErr(f, "report output")
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(site)
}

func parseS3URI(input string) (bucket string, prefix string, err error) {
	trimmed := strings.TrimPrefix(input, "s3://")
	if trimmed == "" {
		return "", "", fmt.Errorf("missing s3 bucket")
	}
	parts := strings.SplitN(trimmed, "/", 2)
	bucket = parts[0]
	prefix = ""
	if len(parts) == 2 {
		prefix = strings.TrimPrefix(parts[1], "/")
		if prefix != "" && !strings.HasSuffix(prefix, "/") {
			prefix += "/"
		}
	}
	return bucket, prefix, nil
}

func loadS3Runs(ctx context.Context, cfg config.S3Config, bucket, prefix string, opts loadOptions) ([]RunEntry, error) {
	client, err := s3ClientFromConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	keys, objectSet, err := listSummaryKeys(ctx, client, bucket, prefix)
	if err != nil {
		return nil, err
	}
	runs := make([]RunEntry, 0, len(keys))
	for _, key := range keys {
		dir := strings.TrimSuffix(key, "/summary.json")
		entry, err := readRunFromS3(ctx, client, bucket, dir, opts, objectSet)
		if err != nil {
			continue
		}
		entry.Dir = "s3://" + bucket + "/" + dir
		if strings.TrimSpace(entry.ID) == "" {
			entry.ID = filepath.Base(dir)
		}
		runs = append(runs, entry)
	}
	return runs, nil
}

func listSummaryKeys(ctx context.Context, client *s3.Client, bucket, prefix string) ([]string, map[string]struct{}, error) {
	var keys []string
	objectSet := make(map[string]struct{})
	paginator := s3.NewListObjectsV2Paginator(client, &s3.ListObjectsV2Input{
		Bucket: aws.String(bucket),
		Prefix: aws.String(prefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, nil, err
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			objectSet[key] = struct{}{}
			if strings.HasSuffix(key, "/summary.json") {
				keys = append(keys, key)
			}
		}
	}
	return keys, objectSet, nil
}

func readRunFromS3(ctx context.Context, client *s3.Client, bucket, dir string, opts loadOptions, objectSet map[string]struct{}) (RunEntry, error) {
	summaryData, _, err := readObjectLimited(ctx, client, bucket, dir+"/summary.json", opts.MaxBytes)
	if err != nil {
		return RunEntry{}, err
	}
	var summary report.Summary
	if err := json.Unmarshal([]byte(summaryData), &summary); err != nil {
		return RunEntry{}, err
	}
	files := map[string]FileContent{}
	for _, name := range inlinedFiles {
		files[name] = readObjectFile(ctx, client, bucket, dir+"/"+name, opts.MaxBytes)
	}
	if _, ok := objectSet[dir+"/"+report.RunArchiveName]; ok {
		files[report.RunArchiveName] = FileContent{Name: report.RunArchiveName, Content: "(binary)", Truncated: true}
	}
	return entryFromSummary(summary, filepath.Base(dir), files, opts), nil
}

func readObjectFile(ctx context.Context, client *s3.Client, bucket, key string, maxBytes int) FileContent {
	content, truncated, err := readObjectLimited(ctx, client, bucket, key, maxBytes)
	if err != nil {
		return FileContent{Name: filepath.Base(key)}
	}
	return FileContent{Name: filepath.Base(key), Content: content, Truncated: truncated}
}

func readObjectLimited(ctx context.Context, client *s3.Client, bucket, key string, maxBytes int) (string, bool, error) {
	resp, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if strings.Contains(err.Error(), "NotFound") || strings.Contains(err.Error(), "NoSuchKey") || errors.As(err, &nsk) {
			return "", false, fmt.Errorf("missing object %s", key)
		}
		return "", false, err
	}
	defer util.CloseWithErr(resp.Body, "s3 response body")
	limit := int64(maxBytes) + 1
	data, err := io.ReadAll(io.LimitReader(resp.Body, limit))
	if err != nil {
		return "", false, err
	}
	truncated := len(data) > maxBytes
	if truncated {
		data = data[:maxBytes]
	}
	return string(data), truncated, nil
}

func s3ClientFromConfig(ctx context.Context, cfg config.S3Config) (*s3.Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{}
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.Endpoint != "" {
		//nolint:staticcheck // AWS SDK v2 global endpoint resolver is deprecated, but required for custom S3 endpoints.
		resolver := aws.EndpointResolverWithOptionsFunc(func(service, _ string, _ ...any) (aws.Endpoint, error) {
			if service == s3.ServiceID {
				//nolint:staticcheck // AWS SDK v2 global endpoint resolver is deprecated, but required for custom S3 endpoints.
				return aws.Endpoint{URL: cfg.Endpoint, HostnameImmutable: true}, nil
			}
			//nolint:staticcheck // AWS SDK v2 global endpoint resolver is deprecated, but required for custom S3 endpoints.
			return aws.Endpoint{}, &aws.EndpointNotFoundError{}
		})
		//nolint:staticcheck // AWS SDK v2 global endpoint resolver is deprecated, but required for custom S3 endpoints.
		opts = append(opts, awsconfig.WithEndpointResolverWithOptions(resolver))
	}
	if cfg.AccessKeyID != "" || cfg.SecretAccessKey != "" || cfg.SessionToken != "" {
		creds := credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, cfg.SessionToken)
		opts = append(opts, awsconfig.WithCredentialsProvider(creds))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, err
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
	})
	return client, nil
}

func deriveUploadObjectURL(uploadLocation, name, artifactPublicBaseURL string) string {
	trimmedName := strings.TrimSpace(name)
	if trimmedName == "" {
		return ""
	}
	trimmedUpload := strings.TrimSpace(uploadLocation)
	if trimmedUpload == "" {
		return ""
	}
	if isHTTPURL(trimmedUpload) {
		return objectURL(trimmedUpload, trimmedName)
	}
	if !strings.HasPrefix(strings.ToLower(trimmedUpload), "s3://") {
		return ""
	}
	publicBase := strings.TrimSpace(artifactPublicBaseURL)
	if publicBase == "" {
		return ""
	}
	_, prefix, err := parseS3URI(trimmedUpload)
	if err != nil {
		return ""
	}
	key := objectKey(prefix, trimmedName)
	if strings.TrimSpace(key) == "" {
		return ""
	}
	return objectURL(publicBase, key)
}

func isHTTPURL(url string) bool {
	lower := strings.ToLower(strings.TrimSpace(url))
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

func objectURL(base, name string) string {
	trimmedBase := strings.TrimRight(strings.TrimSpace(base), "/")
	trimmedName := strings.TrimLeft(strings.TrimSpace(name), "/")
	if trimmedBase == "" || trimmedName == "" {
		return ""
	}
	return trimmedBase + "/" + trimmedName
}

func publishReports(ctx context.Context, opts publishOptions, output string) (string, error) {
	if !opts.S3.Enabled {
		return "", nil
	}
	if strings.TrimSpace(opts.S3.Bucket) == "" {
		return "", fmt.Errorf("publish bucket is required when publish is enabled")
	}
	client, err := s3ClientFromConfig(ctx, opts.S3)
	if err != nil {
		return "", err
	}
	for _, name := range []string{"report.json", "reports.json"} {
		data, err := os.ReadFile(filepath.Join(output, name))
		if err != nil {
			return "", err
		}
		key := objectKey(opts.S3.Prefix, name)
		_, err = client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:        aws.String(opts.S3.Bucket),
			Key:           aws.String(key),
			Body:          bytes.NewReader(data),
			ContentLength: aws.Int64(int64(len(data))),
			ContentType:   aws.String("application/json"),
		})
		if err != nil {
			return "", err
		}
	}
	reportKey := objectKey(opts.S3.Prefix, "reports.json")
	if strings.TrimSpace(opts.PublicBaseURL) != "" {
		return objectURL(opts.PublicBaseURL, reportKey), nil
	}
	return fmt.Sprintf("s3://%s/%s", opts.S3.Bucket, reportKey), nil
}

func objectKey(prefix, name string) string {
	trimmedPrefix := strings.Trim(prefix, "/")
	trimmedName := strings.TrimLeft(strings.TrimSpace(name), "/")
	if trimmedPrefix == "" {
		return trimmedName
	}
	return trimmedPrefix + "/" + trimmedName
}
