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

type AddrConfig struct {
	Port int    `yaml:"port"`
	Host string `yaml:"host"`
}

type LogConfig struct {
	LogLevel string `yaml:"log_level"`
}

type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret"`
	Audience  string `yaml:"audience"`
}

type DataSourceConfig struct {
	Hostname string `yaml:"hostname"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
}

type ActivityStoreConfig struct {
	URI        string `yaml:"uri"`
	Database   string `yaml:"database"`
	Collection string `yaml:"collection"`
}

// SyncConfig carries the tunables of the synchronization engine.
type SyncConfig struct {
	WorkerCount                int `yaml:"worker_count"`
	TaskPollIntervalSeconds    int `yaml:"task_poll_interval_seconds"`
	MaxExportAttempts          int `yaml:"max_export_attempts"`
	ExportRetryIntervalSeconds int `yaml:"export_retry_interval_seconds"`
	DeletionSweepIntervalSecs  int `yaml:"deletion_sweep_interval_seconds"`
	DeferredRefWarningAgeHours int `yaml:"deferred_reference_warning_age_hours"`
	DefaultExportParallelism   int `yaml:"default_export_parallelism"`
}

type Config struct {
	Addr       AddrConfig          `yaml:"addr"`
	Log        LogConfig           `yaml:"log"`
	Auth       AuthConfig          `yaml:"auth"`
	DataSource DataSourceConfig    `yaml:"datasource"`
	Activity   ActivityStoreConfig `yaml:"activity_store"`
	Sync       SyncConfig          `yaml:"sync"`
}
