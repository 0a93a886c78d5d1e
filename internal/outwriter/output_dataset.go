package outwriter

import (
	"io"

	"github.com/huangsam/trendline/internal/loader"
	"github.com/huangsam/trendline/schema"
)

// WriteDataset writes a dataset in one of the input formats, so it can be loaded back.
func WriteDataset(dataset *schema.Dataset, format schema.InputFormat, outputFile string) error {
	return writeWithFile(outputFile, func(w io.Writer) error {
		return loader.Encode(w, dataset, format)
	}, "Wrote "+string(format)+" dataset")
}
