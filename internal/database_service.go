package internal

type Data interface {
	DataType() string
}

type Database interface {
	WriteLogMessage(data Data) error
	WriteTransaction(data Data) error
}
