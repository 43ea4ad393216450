package postgres

var MapWriteError = mapWriteError
