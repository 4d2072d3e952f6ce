package generator

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const (
	LawyersFile      = "lawyers.json"
	TestimonialsFile = "testimonials.json"
)

// WriteDataset serializes the dataset into lawyers.json and testimonials.json under the provided directory.
func WriteDataset(dataset Dataset, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	if err := writeJSON(filepath.Join(dir, LawyersFile), dataset.Lawyers); err != nil {
		return err
	}
	if err := writeJSON(filepath.Join(dir, TestimonialsFile), dataset.Testimonials); err != nil {
		return err
	}
	return nil
}

// ReadDataset loads a dataset previously written by WriteDataset.
func ReadDataset(dir string) (Dataset, error) {
	var dataset Dataset
	if err := readJSON(filepath.Join(dir, LawyersFile), &dataset.Lawyers); err != nil {
		return Dataset{}, err
	}
	if err := readJSON(filepath.Join(dir, TestimonialsFile), &dataset.Testimonials); err != nil {
		return Dataset{}, err
	}
	return dataset, nil
}

func writeJSON(path string, data any) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("encode json for %s: %w", path, err)
	}
	return nil
}

func readJSON(path string, target any) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	if err := json.NewDecoder(file).Decode(target); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
