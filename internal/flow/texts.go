package flow

import (
	"fmt"
	"strings"
)

// Подписи кнопок
const (
	stopLabel             = "Стоп"
	labelSend             = "Отправить"
	labelDelete           = "Удалить"
	labelCancelDelete     = "Отмена"
	labelRequestRecipient = "Выбрать получателя отчётов."
)

// TextInternalError is sent when handling fails for a reason the user cannot fix.
const TextInternalError = "Произошла ошибка, попробуйте позже."

// Служебные сообщения
const (
	textCancelled          = "Команда отменена."
	textNothingToCancel    = "Команда \"/cancel\" не сработала из-за отсутствия выполняемых команд."
	textUnknownCommand     = "Ваше сообщение не является корректной командой."
	textNotText            = "Ваше сообщение не является текстом, отправьте другое."
	textCommandBusy        = "Вы не можете использовать эту команду во время выполнения другой. Для отмены текущей команды воспользуйтесь \"/cancel\"."
	textUseButtons         = "Для выбора участников используйте кнопки под сообщением."
	textUseRecipientButton = "Нажмите на кнопку и выберите получателя отчётов."
	textStaleButton        = "Эта кнопка больше не активна."
	textStateLost          = "Выполнение команды прервано, начните заново."
)

func textStart(name string) string {
	return fmt.Sprintf("Здравствуйте, %s!\n"+
		"Этот бот предназначен для создания отчётов об отсутствии участников групп.\n"+
		"Для получения более подробной справочной информации воспользуйтесь командой \"/help\".", name)
}

var textHelp = strings.Join([]string{
	"При помощи данного бота вы можете создать группу.",
	"Также у вас есть возможность добавить в группу участников.",
	"Количество групп и участников не может превышать 25.",
	"Имена групп, как и имена участников, не должны превышать длину в 25 символов.",
	"При добавлении и удалении участников каждое имя отправляется в новом сообщении. Для окончания отправки имён нажмите на кнопку с текстом \"Стоп\".",
	"После создания группы вы являетесь её получателем отчётов, однако вы можете назначить на эту роль другого пользователя, который хотя бы раз запускал бота, используя специальную команду.",
	"Но один и тот же пользователь не может быть получателем отчётов для 2 групп с одинаковыми названиями.",
	"После настройки группы вы сможете создать отчёт и отправить его получателю. Если вы будете отправлять отчёт для одной и той же группы больше одного раза в день, то получателю будет сообщаться, что отчёт изменился.",
	"Бот сохраняет дату создания отчётов, поэтому получатель может запросить статистику или файл отчётов за неделю, месяц, год или произвольный промежуток времени.",
	"По умолчанию бот работает в часовом поясе UTC +10800 секунд (UTC +3:00). Если вы живёте в другом часовом поясе, укажите его при помощи специальной команды: в секундах (например, -3600) или в формате ±ЧЧ:ММ (например, +05:00).",
	"",
	"Для взаимодействия с ботом вы можете воспользоваться следующими командами:",
	"/start - Начать диалог с ботом;",
	"/help - Получить справочную информацию;",
	"/cancel - Отменить выполнение текущей команды;",
	"/setutcoffset - Указать смещение UTC в вашем часовом поясе;",
	"/feedback - Отправить сообщение разработчику;",
	"/creategroup - Создать группу;",
	"/addmembers - Добавить участников в группу;",
	"/deletegroup - Удалить группу;",
	"/removemembers - Удалить участников из группы;",
	"/assignreportsrecipient - Назначить получателя отчётов для группы;",
	"/createreport - Создать и отправить отчёт об отсутствии участников группы;",
	"/getstatistics - Получить статистику об отсутствии участников группы;",
	"/getreportsfile - Получить файл с отчётами об отсутствии участников группы.",
}, "\n")

// Смещение UTC и обратная связь
const (
	textAskOffset    = "Введите смещение UTC в секундах (например, 10800) или в формате ±ЧЧ:ММ (например, +03:00)."
	textOffsetFormat = "Смещение UTC должно быть целым числом секунд или иметь формат ±ЧЧ:ММ, введите другое."
	textOffsetRange  = "Смещение UTC выходит за границы допустимых значений, введите другое."
	textOffsetSet    = "Смещение UTC успешно установлено."

	textFeedbackUnavailable = "Отправка обратной связи сейчас недоступна."
	textFeedbackLimit       = "Вы исчерпали лимит сообщений обратной связи на сегодня, попробуйте завтра."
	textAskFeedback         = "Введите сообщение обратной связи."
	textFeedbackEmpty       = "Сообщение обратной связи не может быть пустым, введите другое."
	textFeedbackSent        = "Сообщение обратной связи успешно отправлено."
	textFeedbackFailed      = "Не удалось отправить сообщение обратной связи, попробуйте позже."
)

func textFeedbackForOwner(name string, tgID int64, body string) string {
	return fmt.Sprintf("Обратная связь от пользователя %s (id %d):\n%s", name, tgID, body)
}

// Группы
const (
	textMaxGroups           = "Вы создали максимальное количество групп."
	textAskGroupName        = "Введите название группы."
	textGroupNameEmpty      = "Название группы не может быть пустым, введите другое."
	textGroupNameLong       = "Название группы слишком длинное, введите другое."
	textGroupExists         = "Вы уже создавали группу с таким названием, введите другое."
	textGroupRecipientClash = "Вы уже являетесь получателем отчётов группы с таким названием, введите другое."
	textGroupCreated        = "Группа успешно создана."
	textSelectGroup         = "Выберите группу из списка."
	textNoOwnGroup          = "Вы не создавали группу с таким названием, выберите другую."

	textNoGroupsToAdd  = "Вы не создавали группу, в которую можно добавить участников."
	textGroupFullAbort = "Добавление участников в группу прервано, так как в выбранной группе содержится максимальное количество участников."
	textAskMembers     = "Введите имена участников.\nКаждое имя отправляйте отдельным сообщением, для окончания нажмите на кнопку \"Стоп\"."
	textMemberEmpty    = "Участник не был добавлен, так как имя пустое."
	textMemberLong     = "Участник не был добавлен, по причине превышения размера имени."
	textMemberExists   = "Участник не был добавлен, по причине существования в группе."
	textMemberAdded    = "Участник успешно добавлен в группу."
	textAddDone        = "Добавление участников в группу закончено."
	textAddFull        = "Добавление участников в группу закончено, так как в группе содержится максимальное количество участников."

	textNoGroupsToDelete = "Вы не создавали группу, которую можно удалить."
	textConfirmDelete    = "Вы уверены, что хотите удалить группу?\nДля подтверждения нажмите на кнопку с текстом \"Удалить\".\nДля отмены нажмите на кнопку с текстом \"Отмена\"."
	textBadAnswer        = "Неверный ответ, отправьте другой."
	textGroupDeleted     = "Группа успешно удалена."
	textDeleteCancelled  = "Удаление группы отменено."

	textNoGroupsToRemove  = "Вы не создавали группу, из которой можно удалить участников."
	textNoMembersToRemove = "Удаление участников отменено, так как в группе отсутствуют участники."
	textSelectMembers     = "Выберите участников из списка, для окончания нажмите на кнопку \"Стоп\"."
	textMemberMissing     = "Участник не был удалён, по причине отсутствия в группе."
	textMemberRemoved     = "Участник успешно удалён из группы."
	textRemoveDone        = "Удаление участников из группы закончено."
	textRemoveEmptied     = "Удаление участников из группы закончено, так как в группе нет участников."

	textNoGroupsToAssign  = "Вы не создавали группу, для которой можно назначить получателя отчётов."
	textRecipientUnknown  = "Вы не можете выбирать пользователя, который не запускал бота."
	textRecipientClash    = "Этот пользователь уже является получателем отчётов группы с таким названием, выберите другого."
	textRecipientAssigned = "Получатель отчётов успешно назначен."
)

// Отчёты
const (
	textNoGroupsToReport   = "Вы не создавали группу, для которой можно создать отчёт."
	textNoMembersToReport  = "Создание отчёта отменено, так как в группе отсутствуют участники."
	textReportHowTo        = "Для добавления участника в отчёт нажмите кнопку с его именем.\nДля отправки отчёта нажмите кнопку \"Отправить\"."
	textReportSent         = "Отчёт успешно отправлен."
	textReportNotDelivered = "Отчёт сохранён, но получателю невозможно отправить сообщение."
)

func textReportFor(group string) string {
	return fmt.Sprintf("Создание отчёта для группы \"%s\".", group)
}

func textPicked(member string) string {
	return fmt.Sprintf("Участник \"%s\" добавлен в отчёт.", member)
}

func textAlreadyPicked(member string) string {
	return fmt.Sprintf("Участник \"%s\" уже добавлен в отчёт.", member)
}

func textReportChanged(group string) string {
	return fmt.Sprintf("Изменения в сегодняшнем отчёте для группы \"%s\".", group)
}

// textAbsence lists absentees in the order given.
func textAbsence(group string, absent []string) string {
	if len(absent) == 0 {
		return fmt.Sprintf("Сегодня в группе \"%s\" отсутствующих нет.", group)
	}
	return fmt.Sprintf("Сегодня в группе \"%s\" отсутствуют:\n%s.", group, strings.Join(absent, ";\n"))
}

// Статистика и файлы
const (
	textNotRecipientAny   = "Вы не назначены получателем отчётов ни в одной группе."
	textNotRecipientOf    = "Вы не назначены получателем отчётов в группе с таким названием, выберите другую."
	textAskDateFrom       = "Выберите период времени или введите дату начала в формате ДД.ММ.ГГГГ."
	textBadDateFrom       = "Неверный период или дата, выберите период или введите дату в формате ДД.ММ.ГГГГ."
	textFutureDateFrom    = "Дата начала не может быть позже сегодняшней, введите другую."
	textAskDateTo         = "Введите дату окончания в формате ДД.ММ.ГГГГ."
	textBadDateTo         = "Неверная дата, введите дату в формате ДД.ММ.ГГГГ."
	textFutureDateTo      = "Дата окончания не может быть позже сегодняшней, введите другую."
	textDateToBeforeFrom  = "Дата окончания не может быть раньше даты начала, введите другую."
	textAskFormat         = "Выберите формат файла."
	textBadFormat         = "Неверный формат файла, выберите другой."
	textFormatUnavailable = "Формат \"%s\" сейчас недоступен, выберите другой."
)
