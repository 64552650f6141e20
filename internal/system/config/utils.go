/*
 * Copyright (c) 2025, WSO2 LLC. (http://www.wso2.com).
 *
 * WSO2 LLC. licenses this file to you under the Apache License,
 * Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.
 * You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing,
 * software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
 * KIND, either express or implied.  See the License for the
 * specific language governing permissions and limitations
 * under the License.
 */

package config

import (
	"gopkg.in/yaml.v2"
	"os"
	"path"
)

// LoadConfig reads the deployment descriptor, expands environment
// references and unmarshals it into a Config.
func LoadConfig(mdsHome, filePath string) (*Config, error) {
	file, err := os.ReadFile(path.Join(mdsHome, filePath))
	if err != nil {
		return nil, err
	}

	expanded := os.ExpandEnv(string(file))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)
	return &cfg, nil
}

// OverrideMDSRuntime replaces the runtime configuration, used by tests.
func OverrideMDSRuntime(conf Config) {
	applyDefaults(&conf)
	runtimeConfig = &MDSRuntime{
		Config: conf,
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Sync.WorkerCount <= 0 {
		cfg.Sync.WorkerCount = 4
	}
	if cfg.Sync.TaskPollIntervalSeconds <= 0 {
		cfg.Sync.TaskPollIntervalSeconds = 5
	}
	if cfg.Sync.MaxExportAttempts <= 0 {
		cfg.Sync.MaxExportAttempts = 3
	}
	if cfg.Sync.ExportRetryIntervalSeconds <= 0 {
		cfg.Sync.ExportRetryIntervalSeconds = 60
	}
	if cfg.Sync.DeletionSweepIntervalSecs <= 0 {
		cfg.Sync.DeletionSweepIntervalSecs = 300
	}
	if cfg.Sync.DeferredRefWarningAgeHours <= 0 {
		cfg.Sync.DeferredRefWarningAgeHours = 24
	}
	if cfg.Sync.DefaultExportParallelism <= 0 {
		cfg.Sync.DefaultExportParallelism = 1
	}
}
