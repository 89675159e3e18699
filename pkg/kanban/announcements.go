package kanban

import "fmt"

func pickedUpColumn(title string, pos, total int) string {
	return fmt.Sprintf("Picked up Column %s at position: %d of %d", title, pos, total)
}

func pickedUpTask(title string, pos, total int, column string) string {
	return fmt.Sprintf("Picked up Task %s at position: %d of %d in column %s", title, pos, total, column)
}

func columnMovedOver(title, over string, pos, total int) string {
	return fmt.Sprintf("Column %s was moved over %s at position %d of %d", title, over, pos, total)
}

func taskMovedOverColumn(title, column string, pos, total int) string {
	return fmt.Sprintf("Task %s was moved over column %s in position %d of %d", title, column, pos, total)
}

func taskMovedWithinColumn(pos, total int, column string) string {
	return fmt.Sprintf("Task was moved over position %d of %d in column %s", pos, total, column)
}

func taskMovedOntoColumn(title, column string) string {
	return fmt.Sprintf("Task %s was moved over column %s", title, column)
}

func columnDropped(title string, pos, total int) string {
	return fmt.Sprintf("Column %s was dropped into position %d of %d", title, pos, total)
}

func taskDroppedIntoColumn(column string, pos, total int) string {
	return fmt.Sprintf("Task was dropped into column %s in position %d of %d", column, pos, total)
}

func taskDroppedWithinColumn(pos, total int, column string) string {
	return fmt.Sprintf("Task was dropped into position %d of %d in column %s", pos, total, column)
}

func dragCancelled(kind string) string {
	return fmt.Sprintf("Dragging %s cancelled.", kind)
}
