package config

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"

	"github.com/zx06/keyreset/internal/errors"
)

const (
	appName  = "keyreset"
	fileName = "keyreset.yaml"
)

func (o *Options) fill() {
	if o.WorkDir == "" {
		wd, _ := os.Getwd()
		o.WorkDir = wd
	}
	if o.ConfigHome == "" {
		o.ConfigHome = xdg.ConfigHome
	}
	if o.StateHome == "" {
		o.StateHome = xdg.StateHome
	}
}

func defaultConfigPaths(workDir, configHome string) []string {
	paths := make([]string, 0, 2)
	if workDir != "" {
		paths = append(paths, filepath.Join(workDir, fileName))
	}
	if configHome != "" {
		paths = append(paths, filepath.Join(configHome, appName, fileName))
	}
	return paths
}

// DefaultBackupDir 是未指定目录时 backup / restore / verify 使用的目录。
func DefaultBackupDir(stateHome string) string {
	if stateHome == "" {
		stateHome = xdg.StateHome
	}
	return filepath.Join(stateHome, appName)
}

func readFile(path string) (File, *errors.XError) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return File{}, errors.New(errors.CodeCfgNotFound, "config file not found", map[string]any{"path": path})
		}
		return File{}, errors.Wrap(errors.CodeCfgInvalid, "failed to read config file", map[string]any{"path": path}, err)
	}
	var f File
	if err := yaml.Unmarshal(b, &f); err != nil {
		return File{}, errors.Wrap(errors.CodeCfgInvalid, "invalid config file", map[string]any{"path": path}, err)
	}
	return f, nil
}

// LoadConfig 加载配置文件，返回完整配置和配置文件路径。
// 没有任何配置文件时返回空 File 与空路径。
func LoadConfig(opts Options) (File, string, *errors.XError) {
	opts.fill()

	if opts.ConfigPath != "" {
		abs := opts.ConfigPath
		if !filepath.IsAbs(abs) {
			abs = filepath.Join(opts.WorkDir, abs)
		}
		f, xe := readFile(abs)
		if xe != nil {
			return File{}, "", xe
		}
		return f, abs, nil
	}

	for _, p := range defaultConfigPaths(opts.WorkDir, opts.ConfigHome) {
		f, xe := readFile(p)
		if xe != nil {
			if xe.Code == errors.CodeCfgNotFound {
				continue
			}
			return File{}, "", xe
		}
		return f, p, nil
	}
	return File{}, "", nil
}
