package get

import (
	"context"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-getter"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// DefaultCacheDir is shared by every run so that remote sources are only
// downloaded once.
const DefaultCacheDir = ".itest"

type Fetcher struct {
	CacheDir string
}

func New() *Fetcher {
	return &Fetcher{CacheDir: DefaultCacheDir}
}

// Bytes returns the content of src. src is either a local file or a
// go-getter source of the form $repo//$path, like github.com/org/schemas//order.json.
func (f *Fetcher) Bytes(src string) ([]byte, error) {
	if !strings.Contains(src, "//") || strings.HasPrefix(src, "/") {
		bytes, err := ioutil.ReadFile(src)
		if err != nil {
			return nil, errors.Wrapf(err, "read file %s", src)
		}
		return bytes, nil
	}

	return f.remote(src)
}

func (f *Fetcher) remote(goGetterSrc string) ([]byte, error) {
	pwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	parts := strings.Split(goGetterSrc, "//")
	last := len(parts) - 1

	fileAndQuery := strings.SplitN(parts[last], "?", 2)
	file := fileAndQuery[0]
	var fileQuery string
	if len(fileAndQuery) > 1 {
		fileQuery = fileAndQuery[1]
	}

	dirAndQuery := strings.SplitN(strings.Join(parts[:last], "//"), "?", 2)
	srcDir := dirAndQuery[0]
	var dirQuery string
	if len(dirAndQuery) > 1 {
		dirQuery = dirAndQuery[1]
	}

	var queries []string
	for _, q := range []string{fileQuery, dirQuery} {
		if q != "" {
			queries = append(queries, q)
		}
	}
	query := strings.Join(queries, "&")

	replacer := strings.NewReplacer("/", "_", ".", "_", ":", "_")
	cacheKey := replacer.Replace(srcDir)
	if query != "" {
		cacheKey = fmt.Sprintf("%s.%s", cacheKey, strings.Replace(query, "&", "_", -1))
	}

	dst := filepath.Join(f.CacheDir, cacheKey)

	stat, err := os.Stat(dst)
	switch {
	case err != nil && !os.IsNotExist(err):
		return nil, fmt.Errorf("stat: %v", err)
	case err == nil && !stat.IsDir():
		return nil, fmt.Errorf("%s is not directory. please remove it so that it can be used for caching", dst)
	case err != nil:
		src := srcDir
		if query != "" {
			src = strings.Join([]string{srcDir, query}, "?")
		}

		logrus.Debugf("downloading %s to %s", src, dst)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		client := &getter.Client{
			Ctx:  ctx,
			Src:  src,
			Dst:  dst,
			Pwd:  pwd,
			Mode: getter.ClientModeDir,
		}

		if err := client.Get(); err != nil {
			return nil, fmt.Errorf("get: %v", err)
		}
	}

	bytes, err := ioutil.ReadFile(filepath.Join(dst, file))
	if err != nil {
		return nil, fmt.Errorf("read file: %v", err)
	}

	return bytes, nil
}
