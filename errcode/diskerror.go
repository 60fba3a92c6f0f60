package errcode

type DiskErr int

const (
	ErrorOutOfDiskSpace DiskErr = DiskErrorBase + iota
	ErrorNotFindUndoFile
	ErrorFailedToWriteToCoinDatabase
	ErrorFailedToWriteToBlockIndexDatabase
	SystemErrorWhileFlushing
	ErrorNotExistsInDiskMap
)

func (de DiskErr) String() string {
	switch de {
	case ErrorOutOfDiskSpace:
		return "Disk space is low"
	case ErrorNotFindUndoFile:
		return "Failed to find undo file on disk"
	case ErrorFailedToWriteToCoinDatabase:
		return "Failed to write to coin database"
	case ErrorFailedToWriteToBlockIndexDatabase:
		return "Failed to write to block index database"
	case SystemErrorWhileFlushing:
		return "System error while flushing"
	case ErrorNotExistsInDiskMap:
		return "Key does not exist in the disk map"
	}
	return "unknown error"
}
