package dispatch

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"multibot/internal/compose"
	"multibot/internal/domain"
	"multibot/internal/metrics"
)

// Command represents a parsed slash command.
type Command struct {
	Name string   // command name without "/"
	Args []string // arguments after the command
	Raw  string   // original full text
}

// ParseCommand checks if a message starts with "/" and parses it.
// Returns nil if the message is not a command.
func ParseCommand(text string) *Command {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return nil
	}

	parts := strings.Fields(text)
	if len(parts) == 0 {
		return nil
	}

	name := strings.ToLower(strings.TrimPrefix(parts[0], "/"))
	// Telegram appends "@botname" to commands in group chats.
	if at := strings.Index(name, "@"); at >= 0 {
		name = name[:at]
	}

	var args []string
	if len(parts) > 1 {
		args = parts[1:]
	}

	return &Command{Name: name, Args: args, Raw: text}
}

// handleCommand processes a slash command. Commands work in any menu state
// and, except for /start, do not change it.
func (d *Dispatcher) handleCommand(ctx context.Context, cmd *Command, key string) ([]domain.ContentUnit, *domain.Keyboard, error) {
	switch cmd.Name {
	case "start":
		d.sessions.SetMenu(key, MenuMain)
		return textUnits("Привет! Я мультибот! Выбери действие на клавиатуре:"), d.mainKeyboard(), nil

	case "help":
		return textUnits(helpText()), d.keyboardFor(d.sessions.Menu(key)), nil

	case "addpet":
		return d.addPet(ctx, cmd, key)

	case "pet":
		return d.petPhoto(ctx, cmd, key)

	case "stats":
		return textUnits(metrics.Collector.Summary()), d.keyboardFor(d.sessions.Menu(key)), nil

	case "uptime":
		uptime := time.Since(d.startTime).Round(time.Second)
		return textUnits(fmt.Sprintf("Время работы: %s", uptime)), d.keyboardFor(d.sessions.Menu(key)), nil

	default:
		return textUnits("Неизвестная команда. /help — список команд."), d.keyboardFor(d.sessions.Menu(key)), nil
	}
}

func (d *Dispatcher) addPet(ctx context.Context, cmd *Command, key string) ([]domain.ContentUnit, *domain.Keyboard, error) {
	kb := d.keyboardFor(d.sessions.Menu(key))
	if len(cmd.Args) == 0 {
		return textUnits("Использование: /addpet <имя> [статус]"), kb, nil
	}
	name := cmd.Args[0]
	status := ""
	if len(cmd.Args) > 1 {
		status = cmd.Args[1]
	}

	fctx, cancel := context.WithTimeout(ctx, d.fetchTimeout)
	defer cancel()

	pet, err := d.inventory.CreatePet(fctx, name, status)
	if err != nil {
		return textUnits("Не удалось добавить питомца."), kb, err
	}
	return textUnits(fmt.Sprintf("Питомец добавлен: %s (%s), id %d", pet.Name, pet.Status, pet.ID)), kb, nil
}

func (d *Dispatcher) petPhoto(ctx context.Context, cmd *Command, key string) ([]domain.ContentUnit, *domain.Keyboard, error) {
	kb := d.keyboardFor(d.sessions.Menu(key))
	if len(cmd.Args) == 0 {
		return textUnits("Использование: /pet <id>"), kb, nil
	}
	id, err := strconv.ParseInt(cmd.Args[0], 10, 64)
	if err != nil {
		return textUnits("Идентификатор питомца должен быть числом."), kb, nil
	}

	fctx, cancel := context.WithTimeout(ctx, d.fetchTimeout)
	defer cancel()

	url, err := d.inventory.PetPhoto(fctx, id)
	if err != nil {
		return textUnits("Фото питомца не найдено."), kb, err
	}
	return []domain.ContentUnit{compose.PhotoOrText(url, fmt.Sprintf("Фото питомца %d", id))}, kb, nil
}

func helpText() string {
	return `Команды:
/start — главное меню
/help — эта справка
/addpet <имя> [статус] — добавить питомца
/pet <id> — фото питомца
/stats — статистика бота
/uptime — время работы

Кнопки меню: котики, картинка NASA, запуски и ракеты SpaceX, питомцы.`
}
