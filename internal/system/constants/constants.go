package constants

const ApiBasePath = "/api/v1"
