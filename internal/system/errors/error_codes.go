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

package errors

const errorPrefix = "MDS-"

var (
	// Server error codes

	DB_CLIENT_INIT = ErrorMessage{
		Code:    errorPrefix + "15001",
		Message: "Error while initializing the database client.",
	}

	EXECUTE_QUERY = ErrorMessage{
		Code:    errorPrefix + "15002",
		Message: "Error while executing database query.",
	}

	BEGIN_TRANSACTION = ErrorMessage{
		Code:    errorPrefix + "15003",
		Message: "Error while beginning database transaction.",
	}

	COMMIT_TRANSACTION = ErrorMessage{
		Code:    errorPrefix + "15004",
		Message: "Error while committing database transaction.",
	}

	LOCK_KEY_GEN = ErrorMessage{
		Code:    errorPrefix + "15005",
		Message: "Error while generating advisory lock key.",
	}

	LOCK_ACQUIRE = ErrorMessage{
		Code:    errorPrefix + "15006",
		Message: "Error while acquiring advisory lock.",
	}

	LOCK_RELEASE = ErrorMessage{
		Code:    errorPrefix + "15007",
		Message: "Error while releasing advisory lock.",
	}

	LOCK_RESULT_INVALID = ErrorMessage{
		Code:    errorPrefix + "15008",
		Message: "Advisory lock query returned an invalid result.",
	}

	ADD_SYNC_RULE = ErrorMessage{
		Code:    errorPrefix + "15101",
		Message: "Error while adding sync rule.",
	}

	GET_SYNC_RULE = ErrorMessage{
		Code:    errorPrefix + "15102",
		Message: "Error while fetching sync rule(s).",
	}

	UPDATE_SYNC_RULE = ErrorMessage{
		Code:    errorPrefix + "15103",
		Message: "Error while updating sync rule.",
	}

	DELETE_SYNC_RULE = ErrorMessage{
		Code:    errorPrefix + "15104",
		Message: "Error while deleting sync rule.",
	}

	ADD_MATCHING_RULE = ErrorMessage{
		Code:    errorPrefix + "15105",
		Message: "Error while adding object matching rule.",
	}

	GET_MATCHING_RULE = ErrorMessage{
		Code:    errorPrefix + "15106",
		Message: "Error while fetching object matching rule(s).",
	}

	DELETE_MATCHING_RULE = ErrorMessage{
		Code:    errorPrefix + "15107",
		Message: "Error while deleting object matching rule.",
	}

	GET_CONNECTED_SYSTEM = ErrorMessage{
		Code:    errorPrefix + "15108",
		Message: "Error while fetching connected system(s).",
	}

	ADD_CONNECTED_SYSTEM = ErrorMessage{
		Code:    errorPrefix + "15109",
		Message: "Error while adding connected system.",
	}

	DELETE_CONNECTED_SYSTEM = ErrorMessage{
		Code:    errorPrefix + "15110",
		Message: "Error while deleting connected system.",
	}

	GET_CONNECTED_OBJECT = ErrorMessage{
		Code:    errorPrefix + "15111",
		Message: "Error while fetching connected system object(s).",
	}

	UPSERT_CONNECTED_OBJECT = ErrorMessage{
		Code:    errorPrefix + "15112",
		Message: "Error while storing connected system object.",
	}

	GET_METAVERSE_OBJECT = ErrorMessage{
		Code:    errorPrefix + "15113",
		Message: "Error while fetching metaverse object(s).",
	}

	UPSERT_METAVERSE_OBJECT = ErrorMessage{
		Code:    errorPrefix + "15114",
		Message: "Error while storing metaverse object.",
	}

	GET_OBJECT_TYPE = ErrorMessage{
		Code:    errorPrefix + "15115",
		Message: "Error while fetching metaverse object type(s).",
	}

	DEFERRED_REFERENCE_STORE = ErrorMessage{
		Code:    errorPrefix + "15116",
		Message: "Error while storing or resolving deferred reference.",
	}

	EXPORT_CHANGE_STORE = ErrorMessage{
		Code:    errorPrefix + "15117",
		Message: "Error while storing pending export change.",
	}

	WORKER_TASK_STORE = ErrorMessage{
		Code:    errorPrefix + "15118",
		Message: "Error while storing or claiming worker task.",
	}

	ACTIVITY_WRITE = ErrorMessage{
		Code:    errorPrefix + "15119",
		Message: "Error while writing activity record.",
	}

	RECONCILE_FAILED = ErrorMessage{
		Code:    errorPrefix + "15120",
		Message: "Error while reconciling connected system object.",
	}

	EXPORT_DELIVERY = ErrorMessage{
		Code:    errorPrefix + "15121",
		Message: "Error while delivering export change to connector.",
	}

	TASK_EXECUTION = ErrorMessage{
		Code:    errorPrefix + "15122",
		Message: "Error while executing worker task.",
	}

	CONNECTOR_UNAVAILABLE = ErrorMessage{
		Code:    errorPrefix + "15123",
		Message: "No connector registered for the connected system.",
	}

	// Client error codes

	AMBIGUOUS_MATCH = ErrorMessage{
		Code:    errorPrefix + "16001",
		Message: "Object matching produced more than one candidate.",
		Description: "The connected system object matched multiple metaverse objects " +
			"and requires operator resolution.",
	}

	SYNC_RULE_EXISTS = ErrorMessage{
		Code:    errorPrefix + "16002",
		Message: "A sync rule with this order already exists for the object type.",
	}

	MATCHING_RULE_EXISTS = ErrorMessage{
		Code:    errorPrefix + "16003",
		Message: "An object matching rule with this order already exists for the object type.",
	}

	INVALID_RULE_DEFINITION = ErrorMessage{
		Code:    errorPrefix + "16004",
		Message: "The rule definition is invalid.",
	}

	INVALID_TASK_REQUEST = ErrorMessage{
		Code:    errorPrefix + "16005",
		Message: "The worker task request is invalid.",
	}

	TASK_NOT_FOUND = ErrorMessage{
		Code:    errorPrefix + "16006",
		Message: "No worker task exists with the given id.",
	}

	UNAUTHORIZED_REQUEST = ErrorMessage{
		Code:    errorPrefix + "16007",
		Message: "The request is not authorized.",
	}

	INVALID_SYSTEM_DEFINITION = ErrorMessage{
		Code:    errorPrefix + "16008",
		Message: "The connected system definition is invalid.",
	}

	SYSTEM_NOT_FOUND = ErrorMessage{
		Code:    errorPrefix + "16009",
		Message: "No connected system exists with the given id.",
	}

	INVALID_OBJECT_TYPE_DEFINITION = ErrorMessage{
		Code:    errorPrefix + "16010",
		Message: "The object type definition is invalid.",
	}

	OBJECT_TYPE_NOT_FOUND = ErrorMessage{
		Code:    errorPrefix + "16011",
		Message: "No object type exists with the given id.",
	}

	RULE_NOT_FOUND = ErrorMessage{
		Code:    errorPrefix + "16012",
		Message: "No rule exists with the given id.",
	}
)
