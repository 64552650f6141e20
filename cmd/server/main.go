/*
 * Copyright (c) 2025-2026, WSO2 LLC. (http://www.wso2.com).
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

package main

import (
	"flag"
	"fmt"
	stdlog "log"
	"net/http"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	activityStore "github.com/wso2/identity-metadirectory-service/internal/activity/store"
	"github.com/wso2/identity-metadirectory-service/internal/system/config"
	"github.com/wso2/identity-metadirectory-service/internal/system/constants"
	"github.com/wso2/identity-metadirectory-service/internal/system/log"
	"github.com/wso2/identity-metadirectory-service/internal/system/managers"
	"github.com/wso2/identity-metadirectory-service/internal/system/schedulers"
	"github.com/wso2/identity-metadirectory-service/internal/system/workers"
)

const configFile = "repository/conf/deployment.yaml"

func main() {

	mdsHome := getMDSHome()

	if envFiles, err := filepath.Glob(filepath.Join(mdsHome, "config", "*.env")); err == nil && len(envFiles) > 0 {
		_ = godotenv.Load(envFiles...)
	}

	mdsConfig, err := config.LoadConfig(mdsHome, configFile)
	if err != nil {
		stdlog.Fatalf("Failed to load configuration: %v", err)
	}
	if err := config.InitializeMDSRuntime(mdsHome, mdsConfig); err != nil {
		stdlog.Fatalf("Failed to initialize runtime configuration: %v", err)
	}
	if err := log.Init(mdsConfig.Log.LogLevel); err != nil {
		stdlog.Fatalf("Failed to initialize logger: %v", err)
	}
	logger := log.GetLogger()

	if mdsConfig.Activity.URI != "" {
		if err := activityStore.Connect(mdsConfig.Activity.URI, mdsConfig.Activity.Database); err != nil {
			logger.Error(fmt.Sprintf("Failed to connect to activity store: %v", err))
			os.Exit(1)
		}
	}

	workers.StartSyncWorkers()
	go schedulers.StartDeletionSweepScheduler()
	go schedulers.StartExportRetryScheduler()
	go schedulers.StartStaleReferenceScheduler()

	mux := http.NewServeMux()
	serviceManager := managers.NewServiceManager(mux)
	if err := serviceManager.RegisterServices(constants.ApiBasePath); err != nil {
		logger.Error(fmt.Sprintf("Failed to register services: %v", err))
		os.Exit(1)
	}

	serverAddr := fmt.Sprintf("%s:%d", mdsConfig.Addr.Host, mdsConfig.Addr.Port)
	logger.Info(fmt.Sprintf("Metadirectory service listening on %s", serverAddr))
	if err := http.ListenAndServe(serverAddr, mux); err != nil {
		logger.Error(fmt.Sprintf("Server stopped: %v", err))
		os.Exit(1)
	}
}

func getMDSHome() string {

	homeFlag := flag.String("mdsHome", "", "Path to the metadirectory service home directory")
	flag.Parse()
	if *homeFlag != "" {
		return *homeFlag
	}
	if env := os.Getenv("MDS_HOME"); env != "" {
		return env
	}
	wd, err := os.Getwd()
	if err != nil {
		stdlog.Fatalf("Failed to resolve working directory: %v", err)
	}
	return wd
}
